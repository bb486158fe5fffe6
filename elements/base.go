// Package elements 提供可放入水平布局的叶子元素：形状、图片、文本与占位。
package elements

import (
	"image"
	"image/color"

	"github.com/ByLCY/hstrip/drawable"
)

// base 保存叶子元素共用的固有尺寸、放置矩形、alpha 与颜色滤镜。
type base struct {
	iw, ih int
	bounds image.Rectangle
	alpha  int
	filter drawable.ColorFilter
}

func newBase(width, height int) base {
	return base{
		iw:     width,
		ih:     height,
		bounds: image.Rect(0, 0, width, height),
		alpha:  255,
	}
}

func (b *base) IntrinsicWidth() int     { return b.iw }
func (b *base) IntrinsicHeight() int    { return b.ih }
func (b *base) Bounds() image.Rectangle { return b.bounds }

func (b *base) SetBounds(r image.Rectangle) {
	if r == b.bounds {
		return
	}
	b.OnBoundsChange(r)
}

func (b *base) OnBoundsChange(r image.Rectangle) { b.bounds = r }

func (b *base) SetAlpha(alpha int) { b.alpha = drawable.ClampAlpha(alpha) }

func (b *base) Alpha() int { return b.alpha }

func (b *base) SetColorFilter(cf drawable.ColorFilter) { b.filter = cf }

// paint 依次应用滤镜与 alpha。
func (b *base) paint(c color.NRGBA) color.NRGBA {
	if b.filter != nil {
		c = b.filter.Filter(c)
	}
	return drawable.ApplyAlpha(c, b.alpha)
}
