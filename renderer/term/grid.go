package termrenderer

import (
	"image"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/hstrip/drawable"
)

type cell struct {
	ch    rune
	fg    color.NRGBA
	bg    color.NRGBA
	hasFg bool
	hasBg bool
}

func (c cell) glyph() rune {
	if c.ch == 0 {
		return ' '
	}
	return c.ch
}

func (c cell) sameStyle(o cell) bool {
	return c.hasFg == o.hasFg && c.hasBg == o.hasBg && c.fg == o.fg && c.bg == o.bg
}

func (c cell) style(r *lipgloss.Renderer) lipgloss.Style {
	s := r.NewStyle()
	if c.hasFg {
		s = s.Foreground(hex(c.fg))
	}
	if c.hasBg {
		s = s.Background(hex(c.bg))
	}
	return s
}

// grid 是 drawable.Surface 的字符网格实现，坐标仍为布局单位，绘制时映射到单元格。
type grid struct {
	cols, rows   int
	cellW, cellH int
	cells        []cell
	origin       image.Point
	stack        []image.Point
}

var _ drawable.Surface = (*grid)(nil)

func newGrid(cols, rows, cellW, cellH int) *grid {
	return &grid{
		cols:  cols,
		rows:  rows,
		cellW: cellW,
		cellH: cellH,
		cells: make([]cell, cols*rows),
	}
}

func (g *grid) Save() { g.stack = append(g.stack, g.origin) }

func (g *grid) Restore() {
	if len(g.stack) == 0 {
		return
	}
	g.origin = g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
}

func (g *grid) Translate(dx, dy int) { g.origin = g.origin.Add(image.Pt(dx, dy)) }

func (g *grid) at(x, y int) *cell { return &g.cells[y*g.cols+x] }

// span 把布局区间映射为单元格区间（四舍五入），非空区间至少占一格。
func span(lo, hi, size int) (int, int) {
	a := (lo + size/2) / size
	b := (hi + size/2) / size
	if lo < 0 {
		a = -((-lo + size/2) / size)
	}
	if hi < 0 {
		b = -((-hi + size/2) / size)
	}
	if b <= a && hi > lo {
		b = a + 1
	}
	return a, b
}

// cellsOf 返回矩形覆盖的单元格区域，已裁剪到网格内。
func (g *grid) cellsOf(r image.Rectangle) (full, clipped image.Rectangle) {
	r = r.Add(g.origin)
	x0, x1 := span(r.Min.X, r.Max.X, g.cellW)
	y0, y1 := span(r.Min.Y, r.Max.Y, g.cellH)
	full = image.Rect(x0, y0, x1, y1)
	return full, full.Intersect(image.Rect(0, 0, g.cols, g.rows))
}

// blend 以 src-over 合成两个颜色。
func blend(dst, src color.NRGBA) color.NRGBA {
	if src.A == 255 || dst.A == 0 {
		return src
	}
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(s)*a + float64(d)*(1-a) + 0.5) }
	return color.NRGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: uint8(float64(src.A) + float64(dst.A)*(1-a) + 0.5),
	}
}

func (g *grid) paintBg(x, y int, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	cl := g.at(x, y)
	if cl.hasBg {
		cl.bg = blend(cl.bg, c)
	} else {
		cl.bg = c
	}
	cl.hasBg = true
}

func (g *grid) paintGlyph(x, y int, ch rune, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	cl := g.at(x, y)
	cl.ch = ch
	cl.fg = c
	cl.hasFg = true
}

func (g *grid) FillRect(r image.Rectangle, c color.NRGBA) {
	_, area := g.cellsOf(r)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			g.paintBg(x, y, c)
		}
	}
}

func (g *grid) StrokeRect(r image.Rectangle, c color.NRGBA, width int) {
	if width <= 0 {
		return
	}
	full, area := g.cellsOf(r)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if ch := borderGlyph(full, x, y); ch != 0 {
				g.paintGlyph(x, y, ch, c)
			}
		}
	}
}

func borderGlyph(r image.Rectangle, x, y int) rune {
	top, bottom := y == r.Min.Y, y == r.Max.Y-1
	left, right := x == r.Min.X, x == r.Max.X-1
	switch {
	case r.Dx() == 1 || r.Dy() == 1:
		return '█'
	case top && left:
		return '┌'
	case top && right:
		return '┐'
	case bottom && left:
		return '└'
	case bottom && right:
		return '┘'
	case top || bottom:
		return '─'
	case left || right:
		return '│'
	}
	return 0
}

// inEllipse 判断单元格中心是否落在 r 的内切椭圆内。
func inEllipse(r image.Rectangle, x, y int) bool {
	rx, ry := float64(r.Dx())/2, float64(r.Dy())/2
	dx := (float64(x) + 0.5 - float64(r.Min.X) - rx) / rx
	dy := (float64(y) + 0.5 - float64(r.Min.Y) - ry) / ry
	return dx*dx+dy*dy <= 1
}

func (g *grid) FillEllipse(r image.Rectangle, c color.NRGBA) {
	full, area := g.cellsOf(r)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if inEllipse(full, x, y) {
				g.paintBg(x, y, c)
			}
		}
	}
}

func (g *grid) StrokeEllipse(r image.Rectangle, c color.NRGBA, width int) {
	if width <= 0 {
		return
	}
	full, area := g.cellsOf(r)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if !inEllipse(full, x, y) {
				continue
			}
			edge := !inEllipse(full, x-1, y) || !inEllipse(full, x+1, y) ||
				!inEllipse(full, x, y-1) || !inEllipse(full, x, y+1)
			if edge {
				g.paintGlyph(x, y, '•', c)
			}
		}
	}
}

// DrawImage 以每个单元格中心对应的像素作为背景色。
func (g *grid) DrawImage(r image.Rectangle, img image.Image) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	full, area := g.cellsOf(r)
	if full.Empty() {
		return
	}
	b := img.Bounds()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			sx := b.Min.X + (2*(x-full.Min.X)+1)*b.Dx()/(2*full.Dx())
			sy := b.Min.Y + (2*(y-full.Min.Y)+1)*b.Dy()/(2*full.Dy())
			g.paintBg(x, y, color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA))
		}
	}
}

// DrawText 从矩形左侧开始逐个单元格写入字符，落在矩形垂直中间的一行，超出矩形的部分被裁掉。
func (g *grid) DrawText(r image.Rectangle, text string, style drawable.TextStyle) {
	full, area := g.cellsOf(r)
	if area.Empty() {
		return
	}
	y := full.Min.Y + (full.Dy()-1)/2
	if y < area.Min.Y || y >= area.Max.Y {
		return
	}
	x := full.Min.X
	for _, ch := range text {
		if x >= area.Max.X {
			break
		}
		if x >= area.Min.X {
			g.paintGlyph(x, y, ch, style.Color)
		}
		x++
	}
}
