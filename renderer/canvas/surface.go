package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/layout"
)

var transparent = color.RGBA{0, 0, 0, 0}

// surface 把 drawable.Surface 的整数坐标映射到 canvas 的毫米坐标。
// canvas.Context 的 Push/Pop 负责颜色等绘制状态，平移由 origin 栈自行维护。
type surface struct {
	ctx    *canvas.Context
	r      *Renderer
	origin image.Point
	stack  []image.Point
	err    error // 第一个绘制错误，Render 结束时返回
}

var _ drawable.Surface = (*surface)(nil)

func newSurface(ctx *canvas.Context, r *Renderer) *surface {
	return &surface{ctx: ctx, r: r}
}

func (s *surface) Save() {
	s.stack = append(s.stack, s.origin)
	s.ctx.Push()
}

func (s *surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.origin = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.ctx.Pop()
}

func (s *surface) Translate(dx, dy int) {
	s.origin = s.origin.Add(image.Pt(dx, dy))
}

func (s *surface) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// box 返回 r 在画布上的位置与尺寸（mm）。
func (s *surface) box(r image.Rectangle) (x, y, w, h float64) {
	r = r.Add(s.origin)
	return toMm(r.Min.X), toMm(r.Min.Y), toMm(r.Dx()), toMm(r.Dy())
}

func (s *surface) FillRect(r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	x, y, w, h := s.box(r)
	s.ctx.SetFillColor(c)
	s.ctx.SetStrokeColor(transparent)
	s.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func (s *surface) StrokeRect(r image.Rectangle, c color.NRGBA, width int) {
	if r.Empty() || width <= 0 {
		return
	}
	x, y, w, h := s.box(r)
	s.ctx.SetFillColor(transparent)
	s.ctx.SetStrokeColor(c)
	s.ctx.SetStrokeWidth(toMm(width))
	s.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func (s *surface) FillEllipse(r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	x, y, w, h := s.box(r)
	s.ctx.SetFillColor(c)
	s.ctx.SetStrokeColor(transparent)
	s.ctx.DrawPath(x+w/2, y+h/2, canvas.Ellipse(w/2, h/2))
}

func (s *surface) StrokeEllipse(r image.Rectangle, c color.NRGBA, width int) {
	if r.Empty() || width <= 0 {
		return
	}
	x, y, w, h := s.box(r)
	s.ctx.SetFillColor(transparent)
	s.ctx.SetStrokeColor(c)
	s.ctx.SetStrokeWidth(toMm(width))
	s.ctx.DrawPath(x+w/2, y+h/2, canvas.Ellipse(w/2, h/2))
}

// DrawImage 按放置矩形绘制图片。canvas 只能等比缩放，宽高比与矩形不一致时先重采样。
func (s *surface) DrawImage(r image.Rectangle, img image.Image) {
	if r.Empty() || img == nil || img.Bounds().Empty() {
		return
	}
	src := fitImage(img, r.Dx(), r.Dy())
	x, y, w, _ := s.box(r)
	dpmm := float64(src.Bounds().Dx()) / w
	if dpmm <= 0 {
		dpmm = 1
	}
	s.ctx.DrawImage(x, y, src, canvas.DPMM(dpmm))
}

// fitImage 在宽高比与 w:h 不一致时把图片重采样为 w:h，并尽量保留原始分辨率。
func fitImage(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx()*h == b.Dy()*w {
		return img
	}
	scale := max(1, int(math.Ceil(float64(b.Dx())/float64(w))))
	dst := image.NewNRGBA(image.Rect(0, 0, w*scale, h*scale))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// DrawText 在矩形左上角绘制单行文本。fit 模式下矩形高度可能不同于测量高度，字号随之等比缩放。
func (s *surface) DrawText(r image.Rectangle, text string, style drawable.TextStyle) {
	if r.Empty() || text == "" || style.Size <= 0 {
		return
	}
	size := float64(style.Size)
	face, err := s.r.fontFace(style.Font, size, style.Color)
	if err != nil {
		s.fail(err)
		return
	}
	if lh := math.Ceil(face.Metrics().LineHeight * layout.MmToPx); lh > 0 && int(lh) != r.Dy() {
		face, err = s.r.fontFace(style.Font, size*float64(r.Dy())/lh, style.Color)
		if err != nil {
			s.fail(err)
			return
		}
	}

	x, y, _, _ := s.box(r)
	line := canvas.NewTextLine(face, text, canvas.Left)
	// 基线位置：以行顶部加上字体上升部（Ascent）
	s.ctx.DrawText(x, y+face.Metrics().Ascent, line)
}
