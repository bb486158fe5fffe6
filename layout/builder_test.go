package layout

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/dsl"
	"github.com/ByLCY/hstrip/elements"
)

// stubMeasurer 按每个字符 size/2 宽、size 高测量，避免引入 renderer 造成循环依赖。
type stubMeasurer struct {
	fonts map[string]FontResource
}

func (s *stubMeasurer) MeasureText(content string, style drawable.TextStyle) (int, int, error) {
	return len([]rune(content)) * style.Size / 2, style.Size, nil
}

func (s *stubMeasurer) RegisterFonts(fonts map[string]FontResource) { s.fonts = fonts }

// stubAssets 返回指定尺寸的空白图片。
type stubAssets struct {
	images map[string]image.Image
}

func (s *stubAssets) LoadImage(src string) (image.Image, error) {
	if img, ok := s.images[src]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

func newStubAssets() *stubAssets {
	return &stubAssets{images: map[string]image.Image{
		"logo.png":  image.NewNRGBA(image.Rect(0, 0, 40, 20)),
		"alice.png": image.NewNRGBA(image.Rect(0, 0, 10, 10)),
	}}
}

func solid(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// paintRecorder 记录填充颜色与图片，忽略平移。
type paintRecorder struct {
	fills  []color.NRGBA
	images []image.Image
}

func (p *paintRecorder) Save() {}
func (p *paintRecorder) Restore() {}
func (p *paintRecorder) Translate(dx, dy int) {}
func (p *paintRecorder) FillRect(_ image.Rectangle, c color.NRGBA) { p.fills = append(p.fills, c) }
func (p *paintRecorder) StrokeRect(image.Rectangle, color.NRGBA, int) {}
func (p *paintRecorder) FillEllipse(_ image.Rectangle, c color.NRGBA) { p.fills = append(p.fills, c) }
func (p *paintRecorder) StrokeEllipse(image.Rectangle, color.NRGBA, int) {}
func (p *paintRecorder) DrawImage(_ image.Rectangle, img image.Image) { p.images = append(p.images, img) }
func (p *paintRecorder) DrawText(image.Rectangle, string, drawable.TextStyle) {}

func buildStrip(t *testing.T, text string, data any) (*Result, *stubMeasurer) {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	m := &stubMeasurer{}
	res, err := Build(doc, data, BuildOptions{Measurer: m, Assets: newStubAssets()})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res, m
}

func buildErr(t *testing.T, text string) error {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	_, err = Build(doc, nil, BuildOptions{Measurer: &stubMeasurer{}, Assets: newStubAssets()})
	return err
}

const toolbar = `
strip Toolbar v1 {
  meta {
    title: "Toolbar"
    keywords: ["a", "b"]
  }
  resources {
    font Body { src: "builtin:lmroman10-regular" }
    color Accent = #0F62FE
  }
  frame width 240 height 50 margin 5 background #FFF {
    row spacing 4 {
      rect width 20 height 10 fill Accent
      image "logo.png"
      text Body size 20 color #333 { "Hi ${user.name}" }
    }
  }
}
`

func TestBuildFitRowUsesFrameContent(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ann"}}
	res, m := buildStrip(t, toolbar, data)

	if res.Frame.Width != 240 || res.Frame.Height != 50 {
		t.Fatalf("unexpected frame %+v", res.Frame)
	}
	if res.Frame.Margin != (Margin{Top: 5, Right: 5, Bottom: 5, Left: 5}) {
		t.Fatalf("unexpected margin %+v", res.Frame.Margin)
	}
	if res.Frame.Background == nil || *res.Frame.Background != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("unexpected background %v", res.Frame.Background)
	}
	if res.Meta.Title != "Toolbar" || len(res.Meta.Keywords) != 2 || res.Meta.Creator != "hstrip" {
		t.Fatalf("unexpected meta %+v", res.Meta)
	}
	if m.fonts["Body"].Src != "builtin:lmroman10-regular" {
		t.Fatalf("fonts should be registered with the measurer, got %+v", m.fonts)
	}

	root := res.Root
	if root.Bounds() != image.Rect(0, 0, 230, 40) {
		t.Fatalf("root bounds = %v, want content rect", root.Bounds())
	}
	children := root.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	// rect 20x10 -> 80x40, logo 40x20 -> 80x40, text "Hi Ann" 60x20 -> 120x40
	wantWidths := []int{80, 80, 120}
	for i, child := range children {
		if child.Bounds() != image.Rect(0, 0, wantWidths[i], 40) {
			t.Fatalf("child %d bounds = %v, want width %d", i, child.Bounds(), wantWidths[i])
		}
	}
	txt, ok := children[2].(*elements.Text)
	if !ok || txt.Content() != "Hi Ann" {
		t.Fatalf("text should be interpolated, got %#v", children[2])
	}
	if root.IntrinsicWidth() != 20+40+60+8 {
		t.Fatalf("unexpected intrinsic width %d", root.IntrinsicWidth())
	}
}

func TestBuildIntrinsicAndWrapRows(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  frame width 100 height 40 {
    row mode wrap spacing 2 {
      spacer width 6 height 3
      row spacing 1 {
        rect width 4 height 4
        circle width 5 height 9 fill #0A0 alpha 0.5
      }
    }
  }
}
`, nil)
	root := res.Root
	// 嵌套 row 默认 wrap：4+1+5=10 宽，9 高
	if root.Bounds() != image.Rect(0, 0, 6+2+10, 9) {
		t.Fatalf("wrap root bounds = %v", root.Bounds())
	}
	nested := root.Children()[1].(*nestedRow)
	if nested.IntrinsicWidth() != 10 || nested.IntrinsicHeight() != 9 {
		t.Fatalf("nested intrinsic = %dx%d", nested.IntrinsicWidth(), nested.IntrinsicHeight())
	}
	circle := nested.Children()[1].(*elements.Shape)
	if circle.Alpha() != 128 || circle.Kind() != "ellipse" {
		t.Fatalf("circle alpha/kind = %d/%s", circle.Alpha(), circle.Kind())
	}
}

func TestBuildRowTrimAndSpacingUnits(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  frame width 100 height 40 {
    row spacing 3pt trim true mode intrinsic {
      rect width 1in height 10
    }
  }
}
`, nil)
	if res.Root.Spacing() != 4 {
		t.Fatalf("3pt should be 4px, got %d", res.Root.Spacing())
	}
	if res.Root.IntrinsicWidth() != 96 {
		t.Fatalf("1in should be 96px, got %d", res.Root.IntrinsicWidth())
	}
}

func TestBuildTintAndGrayscale(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  resources { color Brand = #123456 }
  frame width 100 height 40 {
    row mode intrinsic {
      rect width 10 height 10 fill #FF0000 tint Brand
      image "red.png" height 10 grayscale true
    }
  }
}
`, nil)
	children := res.Root.Children()
	img := children[1].(*elements.Image)
	if img.IntrinsicWidth() != 20 || img.IntrinsicHeight() != 10 {
		t.Fatalf("image should keep aspect ratio, got %dx%d", img.IntrinsicWidth(), img.IntrinsicHeight())
	}

	p := &paintRecorder{}
	res.Root.Draw(p)
	if len(p.fills) != 1 || p.fills[0] != (color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}) {
		t.Fatalf("tint should replace RGB, got %v", p.fills)
	}
	if len(p.images) != 1 {
		t.Fatalf("expected 1 image draw, got %d", len(p.images))
	}
	px := color.NRGBAModel.Convert(p.images[0].At(0, 0)).(color.NRGBA)
	if px.R != px.G || px.G != px.B || px.R == 255 || px.A != 255 {
		t.Fatalf("grayscale pixel = %v", px)
	}
}

// 同样的 bounds 与 spacing 重复应用，嵌套 row 的放置结果不变。
func TestNestedRowStableAcrossRecompute(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  frame width 200 height 20 {
    row {
      row spacing 2 {
        rect width 10 height 10
        rect width 20 height 10
      }
    }
  }
}
`, nil)
	root := res.Root
	nested := root.Children()[0].(*nestedRow)
	if nested.IntrinsicWidth() != 32 || nested.IntrinsicHeight() != 10 {
		t.Fatalf("nested natural size = %dx%d", nested.IntrinsicWidth(), nested.IntrinsicHeight())
	}
	if nested.Bounds() != image.Rect(0, 0, 64, 20) {
		t.Fatalf("nested bounds = %v", nested.Bounds())
	}
	want := root.Snapshot()
	if len(want.Children) != 1 || len(want.Children[0].Children) != 2 || want.Children[0].Kind != "row" {
		t.Fatalf("snapshot should expand nested row: %+v", want)
	}

	root.OnBoundsChange(root.Bounds())
	if got := root.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("re-applying bounds changed placements:\n got %+v\nwant %+v", got, want)
	}
	root.SetSpacing(root.Spacing())
	root.SetSpacing(root.Spacing())
	if got := root.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("repeated SetSpacing changed placements:\n got %+v\nwant %+v", got, want)
	}
	inner := nested.Children()
	if inner[0].Bounds() != image.Rect(0, 0, 20, 20) || inner[1].Bounds() != image.Rect(0, 0, 40, 20) {
		t.Fatalf("nested children = %v, %v", inner[0].Bounds(), inner[1].Bounds())
	}
}

// 显式 fit 的嵌套 row 也在构建时量出自然尺寸。
func TestNestedFitRowMeasuredAtBuild(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  frame width 200 height 20 {
    row mode intrinsic {
      row mode fit spacing 1 {
        rect width 4 height 2
        rect width 6 height 3
      }
    }
  }
}
`, nil)
	nested := res.Root.Children()[0].(*nestedRow)
	if nested.IntrinsicWidth() != 11 || nested.IntrinsicHeight() != 3 {
		t.Fatalf("fit row natural size = %dx%d", nested.IntrinsicWidth(), nested.IntrinsicHeight())
	}
}

func TestBuildIgnoresUnknownCommands(t *testing.T) {
	res, _ := buildStrip(t, `
strip S v1 {
  frame width 100 height 40 {
    row mode intrinsic {
      sparkle width 3
      spacer width 5 height 5
    }
  }
}
`, nil)
	if res.Root.Len() != 1 {
		t.Fatalf("unknown commands should be skipped, got %d children", res.Root.Len())
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"bad grayscale":    "strip S v1 {\n  frame width 10 height 10 {\n    row { rect width 1 height 1 grayscale maybe }\n  }\n}\n",
		"missing frame":    "strip S v1 {\n  meta { title: \"x\" }\n}\n",
		"missing row":      "strip S v1 {\n  frame width 10 height 10 {\n  }\n}\n",
		"two rows":         "strip S v1 {\n  frame width 10 height 10 {\n    row { }\n    row { }\n  }\n}\n",
		"bad frame size":   "strip S v1 {\n  frame width 0 height 10 {\n    row { }\n  }\n}\n",
		"bad mode":         "strip S v1 {\n  frame width 10 height 10 {\n    row mode stretch { }\n  }\n}\n",
		"unknown color":    "strip S v1 {\n  frame width 10 height 10 {\n    row { rect width 1 height 1 fill Nope }\n  }\n}\n",
		"unknown font":     "strip S v1 {\n  frame width 10 height 10 {\n    row { text Mono { \"x\" } }\n  }\n}\n",
		"missing image":    "strip S v1 {\n  frame width 10 height 10 {\n    row { image \"nope.png\" }\n  }\n}\n",
		"empty rect":       "strip S v1 {\n  frame width 10 height 10 {\n    row { rect width 0 height 1 }\n  }\n}\n",
		"bad trim":         "strip S v1 {\n  frame width 10 height 10 {\n    row trim maybe { }\n  }\n}\n",
		"non-row in frame": "strip S v1 {\n  frame width 10 height 10 {\n    rect width 1 height 1\n  }\n}\n",
	}
	for name, text := range cases {
		if err := buildErr(t, text); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBuildNilDocument(t *testing.T) {
	if _, err := Build(nil, nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#abc":      {R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff},
		"#0F62FE":   {R: 0x0f, G: 0x62, B: 0xfe, A: 0xff},
		"#11223344": {R: 0x11, G: 0x22, B: 0x33, A: 0x44},
	}
	for in, want := range cases {
		got, err := parseColor(in)
		if err != nil || got != want {
			t.Fatalf("parseColor(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseColor("#12"); err == nil {
		t.Fatalf("expected error for short color")
	}
}

func TestParseAlpha(t *testing.T) {
	if v, _ := parseAlpha("0.5"); v != 128 {
		t.Fatalf("0.5 -> %d", v)
	}
	if v, _ := parseAlpha("300"); v != 255 {
		t.Fatalf("300 -> %d", v)
	}
	if _, err := parseAlpha("x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res, _ := buildStrip(t, toolbar, nil)
	path := filepath.Join(t.TempDir(), "debug.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("WriteDebugJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	for _, want := range []string{`"kind": "row"`, `"kind": "image"`, `"intrinsicWidth"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("debug JSON missing %s:\n%s", want, data)
		}
	}
	view := Describe(res)
	if len(view.Root.Children) != 3 {
		t.Fatalf("expected 3 children in debug view, got %d", len(view.Root.Children))
	}
}
