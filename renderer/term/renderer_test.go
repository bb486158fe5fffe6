package termrenderer

import (
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/dsl"
	"github.com/ByLCY/hstrip/layout"
	"github.com/ByLCY/hstrip/renderer"
)

// plain 使用写入 io.Discard 的 lipgloss renderer，颜色能力为 ASCII，输出不含转义序列。
func plain(opts Options) *Renderer {
	opts.Style = lipgloss.NewRenderer(io.Discard)
	if opts.MaxColumns == 0 {
		opts.MaxColumns = -1
	}
	return New(opts)
}

func renderStrip(t *testing.T, r *Renderer, text string) string {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := layout.Build(doc, nil, renderer.BuildOptions(r, false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderTextAndBorder(t *testing.T) {
	out := renderStrip(t, plain(Options{}), `
strip S v1 {
  frame width 80 height 16 {
    row mode intrinsic spacing 8 {
      text Body { "ab" }
      rect width 16 height 16 stroke #000
    }
  }
}
`)
	want := "ab ██     \n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderFollowsColumnLimit(t *testing.T) {
	r := plain(Options{MaxColumns: 10})
	out := renderStrip(t, r, `
strip S v1 {
  frame width 160 height 32 {
    row mode intrinsic {
      spacer width 1 height 1
    }
  }
}
`)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(lines), out)
	}
	for _, line := range lines {
		if n := len([]rune(line)); n != 10 {
			t.Fatalf("expected 10 columns, got %d", n)
		}
	}
}

func TestMeasureTextOneCellPerRune(t *testing.T) {
	r := plain(Options{CellWidth: 6, CellHeight: 12})
	w, h, err := r.MeasureText("héllo", drawable.TextStyle{Size: 40})
	if err != nil || w != 30 || h != 12 {
		t.Fatalf("MeasureText = %d,%d,%v", w, h, err)
	}
}

type failingAssets struct{}

func (failingAssets) LoadImage(string) (image.Image, error) { return nil, errors.New("boom") }

func TestLoadImagePlaceholder(t *testing.T) {
	for _, r := range []*Renderer{plain(Options{}), plain(Options{Assets: failingAssets{}})} {
		img, err := r.LoadImage("logo.png")
		if err != nil {
			t.Fatalf("LoadImage: %v", err)
		}
		if img.Bounds() != image.Rect(0, 0, 16, 16) {
			t.Fatalf("placeholder bounds = %v", img.Bounds())
		}
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := plain(Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestGridEllipseAndSaveRestore(t *testing.T) {
	g := newGrid(4, 4, 1, 1)
	red := color.NRGBA{R: 255, A: 255}
	g.Save()
	g.Translate(1, 1)
	g.Restore()
	g.Restore() // 多余的 Restore 被忽略
	g.FillEllipse(image.Rect(0, 0, 4, 4), red)
	if g.at(0, 0).hasBg || !g.at(1, 1).hasBg || !g.at(2, 2).hasBg {
		t.Fatalf("ellipse fill should skip corners")
	}
	if g.origin != (image.Point{}) {
		t.Fatalf("origin not restored: %v", g.origin)
	}
}

func TestBlend(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	half := color.NRGBA{A: 128}
	got := blend(white, half)
	if got.R != 127 || got.A != 255 {
		t.Fatalf("blend = %v", got)
	}
	if blend(color.NRGBA{}, half) != half {
		t.Fatalf("blend onto transparent should keep src")
	}
}
