// Package termrenderer 把布局画成终端里的字符网格预览。
// 每个单元格对应 CellWidth x CellHeight 个布局单位，颜色通过 lipgloss 输出。
package termrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/layout"
	"github.com/ByLCY/hstrip/renderer"
)

const (
	defaultCellWidth  = 8
	defaultCellHeight = 16
)

// Options 配置终端预览。
type Options struct {
	CellWidth  int // 每列对应的布局宽度，默认 8
	CellHeight int // 每行对应的布局高度，默认 16
	// MaxColumns 限制输出列数，超出时加大 CellWidth。
	// 为 0 时若标准输出是终端则取终端宽度，否则不限制。
	MaxColumns int
	// Assets 用于加载图片；为空时所有图片都用灰色占位。
	Assets layout.AssetLoader
	// Style 决定颜色输出方式，默认使用 lipgloss 的全局 renderer。
	Style  *lipgloss.Renderer
	Logger *zap.Logger
}

// Renderer 是基于字符网格的预览后端。
type Renderer struct {
	opts Options
	log  *zap.Logger
}

var _ renderer.Backend = (*Renderer)(nil)

// New 创建终端预览后端。
func New(opts Options) *Renderer {
	if opts.CellWidth <= 0 {
		opts.CellWidth = defaultCellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = defaultCellHeight
	}
	if opts.MaxColumns == 0 {
		opts.MaxColumns = terminalWidth()
	}
	if opts.Style == nil {
		opts.Style = lipgloss.DefaultRenderer()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{opts: opts, log: log}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// MeasureText 实现 elements.TextMeasurer：每个字符占一个单元格，与字号无关。
func (r *Renderer) MeasureText(content string, _ drawable.TextStyle) (int, int, error) {
	return len([]rune(content)) * r.opts.CellWidth, r.opts.CellHeight, nil
}

// LoadImage 实现 layout.AssetLoader，优先使用配置的加载器，失败时返回占位图。
func (r *Renderer) LoadImage(src string) (image.Image, error) {
	if r.opts.Assets != nil {
		img, err := r.opts.Assets.LoadImage(src)
		if err == nil {
			return img, nil
		}
		r.log.Warn("image unavailable, using placeholder", zap.String("src", src), zap.Error(err))
	}
	return placeholder(r.opts.CellWidth*2, r.opts.CellHeight), nil
}

func placeholder(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, gray)
		}
	}
	return img
}

// Render 把布局画入网格并返回带 ANSI 颜色（取决于 Style 的色彩能力）的多行文本。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Root == nil {
		return nil, fmt.Errorf("缺少可渲染的根布局")
	}
	frame := result.Frame
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("画面尺寸无效: %dx%d", frame.Width, frame.Height)
	}

	cellW := r.opts.CellWidth
	if limit := r.opts.MaxColumns; limit > 0 && ceilDiv(frame.Width, cellW) > limit {
		cellW = ceilDiv(frame.Width, limit)
	}
	g := newGrid(ceilDiv(frame.Width, cellW), ceilDiv(frame.Height, r.opts.CellHeight), cellW, r.opts.CellHeight)

	if bg := frame.Background; bg != nil {
		g.FillRect(image.Rect(0, 0, frame.Width, frame.Height), *bg)
	}
	g.Save()
	g.Translate(frame.Margin.Left, frame.Margin.Top)
	result.Root.Draw(g)
	g.Restore()

	r.log.Debug("terminal preview rendered",
		zap.Int("columns", g.cols),
		zap.Int("rows", g.rows),
		zap.Int("cellWidth", cellW),
	)
	return []byte(g.String(r.opts.Style)), nil
}

func ceilDiv(a, b int) int {
	return int(math.Ceil(float64(a) / float64(b)))
}

// hex 输出 lipgloss 可识别的颜色。
func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// String 逐行输出网格，相邻且样式相同的单元格合并后交给 lipgloss 渲染。
func (g *grid) String(style *lipgloss.Renderer) string {
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		row := g.cells[y*g.cols : (y+1)*g.cols]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].sameStyle(row[start]) {
				end++
			}
			var run strings.Builder
			for _, c := range row[start:end] {
				run.WriteRune(c.glyph())
			}
			sb.WriteString(row[start].style(style).Render(run.String()))
			start = end
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
