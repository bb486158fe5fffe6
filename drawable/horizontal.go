package drawable

import (
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"
)

// Mode 选择一次重算时子元素尺寸的来源。
type Mode int

const (
	// ModeFitContainer 以容器高度为准，子元素宽度按固有宽高比缩放。
	ModeFitContainer Mode = iota
	// ModeIntrinsic 子元素保持固有尺寸。
	ModeIntrinsic
	// ModeWrap 子元素保持当前放置尺寸，容器收缩到恰好包住它们。
	ModeWrap
)

func (m Mode) String() string {
	switch m {
	case ModeFitContainer:
		return "fit"
	case ModeIntrinsic:
		return "intrinsic"
	case ModeWrap:
		return "wrap"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode 解析 DSL 中的尺寸模式名称。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fit", "container", "fit-container", "with-container":
		return ModeFitContainer, nil
	case "intrinsic":
		return ModeIntrinsic, nil
	case "wrap", "wrap-content":
		return ModeWrap, nil
	default:
		return ModeFitContainer, fmt.Errorf("未知的尺寸模式 %q", s)
	}
}

// Options 配置 Horizontal 的可选行为。
type Options struct {
	// TrimTrailingSpacing 为 true 时绘制不在最后一个子元素之后再前进 spacing。
	// 默认保持与测量不一致的旧行为：每个子元素之后都前进 width+spacing。
	TrimTrailingSpacing bool
}

// Horizontal 将子元素从左到右依次排列。
// 所有子元素的放置矩形都以本地原点 (0,0) 为左上角，屏幕偏移只在 Draw 时通过平移得到。
// 非并发安全：由宿主串行调用。
type Horizontal struct {
	children []Drawable
	spacing  int
	bounds   image.Rectangle
	opts     Options

	intrinsicWidth  int
	intrinsicHeight int
}

var _ HostDrawable = (*Horizontal)(nil)

// NewHorizontal 创建水平布局。
// 与 SetChildren 一致：mode 为 ModeFitContainer 时首次重算推迟到宿主设置 bounds 或调用 SetSpacing。
func NewHorizontal(children []Drawable, spacing int, mode Mode) *Horizontal {
	return NewHorizontalWithOptions(children, spacing, mode, Options{})
}

// NewHorizontalWithOptions 创建带可选行为的水平布局。
func NewHorizontalWithOptions(children []Drawable, spacing int, mode Mode, opts Options) *Horizontal {
	h := &Horizontal{spacing: spacing, opts: opts}
	h.SetChildren(children, mode)
	return h
}

// SetSpacing 更新间距并以 ModeFitContainer 重算。
func (h *Horizontal) SetSpacing(spacing int) {
	h.spacing = spacing
	h.resize(ModeFitContainer)
}

// Spacing 返回当前间距。
func (h *Horizontal) Spacing() int { return h.spacing }

// SetChildren 整体替换子元素序列。mode 不是 ModeFitContainer 时立即重算，
// 否则等待下一次 bounds 变化或 SetSpacing。
// 子元素不能为 nil。
func (h *Horizontal) SetChildren(children []Drawable, mode Mode) {
	for i, child := range children {
		if child == nil {
			panic(fmt.Sprintf("drawable: Horizontal 子元素 %d 为 nil", i))
		}
	}
	h.children = children

	if mode != ModeFitContainer {
		h.resize(mode)
	}
}

// Children 返回子元素序列的副本。
func (h *Horizontal) Children() []Drawable {
	out := make([]Drawable, len(h.children))
	copy(out, h.children)
	return out
}

// Len 返回子元素数量。
func (h *Horizontal) Len() int { return len(h.children) }

func (h *Horizontal) resize(mode Mode) {
	h.intrinsicWidth = 0
	h.intrinsicHeight = 0
	if len(h.children) == 0 {
		return
	}

	containerHeight := h.bounds.Dy()
	boundWidth, boundHeight := 0, 0
	last := len(h.children) - 1

	for i, child := range h.children {
		iw := child.IntrinsicWidth()
		ih := child.IntrinsicHeight()

		var width, height int
		switch mode {
		case ModeWrap:
			b := child.Bounds()
			width, height = b.Dx(), b.Dy()
		case ModeIntrinsic:
			width, height = iw, ih
		default:
			height = containerHeight
			if ih != 0 {
				width = int(float32(iw) / float32(ih) * float32(containerHeight))
			}
		}

		child.SetBounds(image.Rect(0, 0, width, height))

		h.intrinsicWidth += iw
		h.intrinsicHeight = max(h.intrinsicHeight, height)
		boundWidth += width
		boundHeight = max(boundHeight, height)
		if h.spacing > 0 && i < last {
			h.intrinsicWidth += h.spacing
			boundWidth += h.spacing
		}
	}

	if mode == ModeWrap {
		// 直接改写 bounds，不触发 OnBoundsChange，否则会立刻被 fit 重算覆盖。
		h.bounds = image.Rect(h.bounds.Min.X, h.bounds.Min.Y, h.bounds.Min.X+boundWidth, h.bounds.Min.Y+boundHeight)
	}

	Logger().Debug("horizontal resized",
		zap.Stringer("mode", mode),
		zap.Int("children", len(h.children)),
		zap.Int("spacing", h.spacing),
		zap.Int("intrinsicWidth", h.intrinsicWidth),
		zap.Int("intrinsicHeight", h.intrinsicHeight),
		zap.Int("boundWidth", boundWidth),
		zap.Int("boundHeight", boundHeight),
	)
}

// Draw 依次绘制子元素。每个子元素绘制后向右平移 width+spacing；
// 未启用 TrimTrailingSpacing 时最后一个子元素之后同样会平移。
func (h *Horizontal) Draw(s Surface) {
	if len(h.children) == 0 {
		return
	}
	s.Save()
	s.Translate(h.bounds.Min.X, h.bounds.Min.Y)

	last := len(h.children) - 1
	for i, child := range h.children {
		child.Draw(s)
		if h.opts.TrimTrailingSpacing && i == last {
			break
		}
		s.Translate(child.Bounds().Dx()+h.spacing, 0)
	}

	s.Restore()
}

func (h *Horizontal) IntrinsicWidth() int  { return h.intrinsicWidth }
func (h *Horizontal) IntrinsicHeight() int { return h.intrinsicHeight }

func (h *Horizontal) Bounds() image.Rectangle { return h.bounds }

// SetBounds 让 Horizontal 可以作为另一个布局的子元素；bounds 变化时转给 OnBoundsChange。
func (h *Horizontal) SetBounds(r image.Rectangle) {
	if r == h.bounds {
		return
	}
	h.OnBoundsChange(r)
}

// OnBoundsChange 记录新的容器矩形，并总是以 ModeFitContainer 重算。
func (h *Horizontal) OnBoundsChange(r image.Rectangle) {
	h.bounds = r
	h.resize(ModeFitContainer)
}

// Opacity 总是报告不透明；子元素是否真正铺满区域由调用方负责。
func (h *Horizontal) Opacity() Opacity { return OpacityOpaque }

// SetAlpha 不受支持，调用被忽略。
func (h *Horizontal) SetAlpha(int) {}

// SetColorFilter 不受支持，调用被忽略。
func (h *Horizontal) SetColorFilter(ColorFilter) {}
