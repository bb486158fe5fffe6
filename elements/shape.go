package elements

import (
	"image/color"

	"github.com/ByLCY/hstrip/drawable"
)

// ShapeKind 区分矩形与椭圆。
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
)

// ShapeStyle 描述填充与描边；Fill/Stroke 为空表示不绘制。
type ShapeStyle struct {
	Fill        *color.NRGBA
	Stroke      *color.NRGBA
	StrokeWidth int
}

// Shape 按放置矩形绘制一个矩形或椭圆。
type Shape struct {
	base
	kind  ShapeKind
	style ShapeStyle
}

var _ drawable.HostDrawable = (*Shape)(nil)

// NewShape 创建固有尺寸为 width x height 的形状。
func NewShape(kind ShapeKind, width, height int, style ShapeStyle) *Shape {
	if style.Stroke != nil && style.StrokeWidth <= 0 {
		style.StrokeWidth = 1
	}
	return &Shape{base: newBase(width, height), kind: kind, style: style}
}

func (s *Shape) Kind() string {
	if s.kind == ShapeEllipse {
		return "ellipse"
	}
	return "rect"
}

func (s *Shape) Draw(surface drawable.Surface) {
	r := s.bounds
	if r.Empty() {
		return
	}
	if s.style.Fill != nil {
		c := s.paint(*s.style.Fill)
		if s.kind == ShapeEllipse {
			surface.FillEllipse(r, c)
		} else {
			surface.FillRect(r, c)
		}
	}
	if s.style.Stroke != nil {
		c := s.paint(*s.style.Stroke)
		if s.kind == ShapeEllipse {
			surface.StrokeEllipse(r, c, s.style.StrokeWidth)
		} else {
			surface.StrokeRect(r, c, s.style.StrokeWidth)
		}
	}
}

// Opacity 只有完全不透明填充的矩形才报告 OpacityOpaque。
func (s *Shape) Opacity() drawable.Opacity {
	if s.alpha == 0 || (s.style.Fill == nil && s.style.Stroke == nil) {
		return drawable.OpacityTransparent
	}
	if s.kind == ShapeRect && s.style.Fill != nil && s.paint(*s.style.Fill).A == 255 {
		return drawable.OpacityOpaque
	}
	return drawable.OpacityTranslucent
}
