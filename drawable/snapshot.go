package drawable

import (
	"fmt"
	"image"
)

// Placement 记录一个元素在最近一次重算后的放置结果，用于调试输出。
type Placement struct {
	Kind            string      `json:"kind"`
	X               int         `json:"x"`
	Y               int         `json:"y"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	IntrinsicWidth  int         `json:"intrinsicWidth"`
	IntrinsicHeight int         `json:"intrinsicHeight"`
	Spacing         int         `json:"spacing,omitempty"`
	Opacity         string      `json:"opacity,omitempty"`
	Children        []Placement `json:"children,omitempty"`
}

// Kinder 由希望在调试输出中使用自定义名称的元素实现。
type Kinder interface {
	Kind() string
}

// Container 由包含子元素的布局实现，Describe 会递归展开它们。
type Container interface {
	Children() []Drawable
	Spacing() int
}

// Describe 递归生成 d 的放置快照。
func Describe(d Drawable) Placement {
	b := d.Bounds()
	p := Placement{
		Kind:            kindOf(d),
		X:               b.Min.X,
		Y:               b.Min.Y,
		Width:           b.Dx(),
		Height:          b.Dy(),
		IntrinsicWidth:  d.IntrinsicWidth(),
		IntrinsicHeight: d.IntrinsicHeight(),
	}
	if hd, ok := d.(HostDrawable); ok {
		p.Opacity = hd.Opacity().String()
	}
	if c, ok := d.(Container); ok {
		p.Spacing = c.Spacing()
		for _, child := range c.Children() {
			p.Children = append(p.Children, Describe(child))
		}
	}
	return p
}

// Snapshot 返回当前布局的放置快照。
func (h *Horizontal) Snapshot() Placement { return Describe(h) }

// Kind 实现 Kinder。
func (h *Horizontal) Kind() string { return "row" }

// Rect 把 Placement 的几何信息还原为矩形。
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

func kindOf(d Drawable) string {
	if k, ok := d.(Kinder); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", d)
}
