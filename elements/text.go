package elements

import (
	"fmt"

	"github.com/ByLCY/hstrip/drawable"
)

// TextMeasurer 根据字体度量计算单行文本的尺寸，由渲染后端实现。
type TextMeasurer interface {
	MeasureText(content string, style drawable.TextStyle) (width, height int, err error)
}

// Text 是单行文本，固有尺寸来自 TextMeasurer。
type Text struct {
	base
	content string
	style   drawable.TextStyle
}

var _ drawable.HostDrawable = (*Text)(nil)

// NewText 测量文本并创建元素。
func NewText(content string, style drawable.TextStyle, m TextMeasurer) (*Text, error) {
	if m == nil {
		return nil, fmt.Errorf("text: 缺少 TextMeasurer")
	}
	w, h, err := m.MeasureText(content, style)
	if err != nil {
		return nil, fmt.Errorf("测量文本 %q 失败: %w", content, err)
	}
	return &Text{base: newBase(w, h), content: content, style: style}, nil
}

func (t *Text) Kind() string { return "text" }

// Content 返回文本内容。
func (t *Text) Content() string { return t.content }

func (t *Text) Draw(s drawable.Surface) {
	if t.bounds.Empty() || t.content == "" {
		return
	}
	style := t.style
	style.Color = t.paint(style.Color)
	s.DrawText(t.bounds, t.content, style)
}

// Opacity 文本只覆盖字形，不可能铺满区域。
func (t *Text) Opacity() drawable.Opacity {
	if t.alpha == 0 || t.content == "" {
		return drawable.OpacityTransparent
	}
	return drawable.OpacityTranslucent
}
