package elements

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/hstrip/drawable"
)

// Image 把一张位图缩放绘制到放置矩形内。
type Image struct {
	base
	src      image.Image
	prepared image.Image // 已应用滤镜与 alpha 的缓存，nil 表示需要重建
}

var _ drawable.HostDrawable = (*Image)(nil)

// NewImage 创建图片元素。width/height 小于等于 0 时取自图片像素尺寸；
// 只给出其中一个时按图片宽高比推算另一个。
func NewImage(src image.Image, width, height int) *Image {
	size := src.Bounds().Size()
	switch {
	case width <= 0 && height <= 0:
		width, height = size.X, size.Y
	case width <= 0 && size.Y > 0:
		width = size.X * height / size.Y
	case height <= 0 && size.X > 0:
		height = size.Y * width / size.X
	}
	return &Image{base: newBase(width, height), src: src}
}

func (i *Image) Kind() string { return "image" }

// Source 返回原始图片。
func (i *Image) Source() image.Image { return i.src }

func (i *Image) SetAlpha(alpha int) {
	i.base.SetAlpha(alpha)
	i.prepared = nil
}

func (i *Image) SetColorFilter(cf drawable.ColorFilter) {
	i.base.SetColorFilter(cf)
	i.prepared = nil
}

func (i *Image) Draw(s drawable.Surface) {
	if i.bounds.Empty() || i.alpha == 0 {
		return
	}
	s.DrawImage(i.bounds, i.rendered())
}

// Opacity 在 alpha 为 255 且图片自身不透明时报告 OpacityOpaque。
func (i *Image) Opacity() drawable.Opacity {
	if i.alpha == 0 {
		return drawable.OpacityTransparent
	}
	if o, ok := i.src.(interface{ Opaque() bool }); ok && o.Opaque() && i.alpha == 255 {
		return drawable.OpacityOpaque
	}
	return drawable.OpacityTranslucent
}

func (i *Image) rendered() image.Image {
	if i.alpha == 255 && i.filter == nil {
		return i.src
	}
	if i.prepared != nil {
		return i.prepared
	}

	r := i.src.Bounds()
	filtered := image.NewNRGBA(r)
	xdraw.Draw(filtered, r, i.src, r.Min, xdraw.Src)
	if i.filter != nil {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				filtered.SetNRGBA(x, y, i.filter.Filter(filtered.NRGBAAt(x, y)))
			}
		}
	}
	if i.alpha == 255 {
		i.prepared = filtered
		return filtered
	}

	out := image.NewNRGBA(r)
	mask := image.NewUniform(color.Alpha{A: uint8(i.alpha)})
	xdraw.DrawMask(out, r, filtered, r.Min, mask, image.Point{}, xdraw.Over)
	i.prepared = out
	return out
}
