package elements

import "github.com/ByLCY/hstrip/drawable"

// Spacer 只占位，不绘制任何内容。
type Spacer struct {
	base
}

var _ drawable.HostDrawable = (*Spacer)(nil)

func NewSpacer(width, height int) *Spacer {
	return &Spacer{base: newBase(width, height)}
}

func (s *Spacer) Kind() string              { return "spacer" }
func (s *Spacer) Draw(drawable.Surface)     {}
func (s *Spacer) Opacity() drawable.Opacity { return drawable.OpacityTransparent }
