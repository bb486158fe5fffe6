package drawable

import (
	"image"
	"image/color"
)

// Drawable 是布局容器对子元素要求的最小能力集合。
// 子元素由宿主持有，容器只读取其固有尺寸并改写其放置矩形。
type Drawable interface {
	IntrinsicWidth() int
	IntrinsicHeight() int
	Bounds() image.Rectangle
	SetBounds(r image.Rectangle)
	Draw(s Surface)
}

// HostDrawable 是暴露给宿主框架的完整接口。
type HostDrawable interface {
	Drawable
	Opacity() Opacity
	SetAlpha(alpha int)
	SetColorFilter(cf ColorFilter)
	OnBoundsChange(r image.Rectangle)
}

// Surface 是绘制目标。Save/Restore 成对保存与恢复变换状态，Translate 以当前原点为基准平移。
// 其余方法为叶子元素使用的绘制原语，坐标均相对于当前原点。
type Surface interface {
	Save()
	Restore()
	Translate(dx, dy int)

	FillRect(r image.Rectangle, c color.NRGBA)
	StrokeRect(r image.Rectangle, c color.NRGBA, width int)
	FillEllipse(r image.Rectangle, c color.NRGBA)
	StrokeEllipse(r image.Rectangle, c color.NRGBA, width int)
	DrawImage(r image.Rectangle, img image.Image)
	DrawText(r image.Rectangle, text string, style TextStyle)
}

// TextStyle 描述文本绘制所需的字体、字号（单位同几何尺寸）与颜色。
type TextStyle struct {
	Font  string      `json:"font"`
	Size  int         `json:"size"`
	Color color.NRGBA `json:"color"`
}

// Opacity 对应宿主合成时关心的不透明度分类。
type Opacity int

const (
	OpacityUnknown Opacity = iota
	OpacityTranslucent
	OpacityTransparent
	OpacityOpaque
)

func (o Opacity) String() string {
	switch o {
	case OpacityTranslucent:
		return "translucent"
	case OpacityTransparent:
		return "transparent"
	case OpacityOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// ColorFilter 在绘制前改写颜色。
type ColorFilter interface {
	Filter(c color.NRGBA) color.NRGBA
}

// ColorFilterFunc 让普通函数满足 ColorFilter。
type ColorFilterFunc func(c color.NRGBA) color.NRGBA

func (f ColorFilterFunc) Filter(c color.NRGBA) color.NRGBA { return f(c) }

// Tint 用给定颜色替换 RGB，保留原有 alpha。
func Tint(tint color.NRGBA) ColorFilter {
	return ColorFilterFunc(func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: tint.R, G: tint.G, B: tint.B, A: c.A}
	})
}

// Grayscale 按 Rec. 601 亮度转为灰度。
func Grayscale() ColorFilter {
	return ColorFilterFunc(func(c color.NRGBA) color.NRGBA {
		y := uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000)
		return color.NRGBA{R: y, G: y, B: y, A: c.A}
	})
}

// ApplyAlpha 将 0-255 的 alpha 叠加到颜色上。
func ApplyAlpha(c color.NRGBA, alpha int) color.NRGBA {
	alpha = ClampAlpha(alpha)
	c.A = uint8(int(c.A) * alpha / 255)
	return c
}

// ClampAlpha 把 alpha 限制在 0-255。
func ClampAlpha(alpha int) int {
	if alpha < 0 {
		return 0
	}
	if alpha > 255 {
		return 255
	}
	return alpha
}
