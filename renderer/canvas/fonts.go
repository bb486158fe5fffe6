package canvasrenderer

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"go.uber.org/zap"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/fonts"
	"github.com/ByLCY/hstrip/layout"
)

// pxToPt 字号以布局单位(px)给出，canvas 的字体面以 pt 创建。
const pxToPt = layout.PtPerIn / layout.PxPerIn

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// RegisterFonts 实现 layout.FontResolver，记录 DSL 中声明的字体。
func (r *Renderer) RegisterFonts(declared map[string]layout.FontResource) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	for name, font := range declared {
		r.fonts[name] = font
	}
}

// MeasureText 实现 elements.TextMeasurer：返回单行文本的宽度与行高（px，向上取整）。
func (r *Renderer) MeasureText(content string, style drawable.TextStyle) (int, int, error) {
	if style.Size <= 0 {
		return 0, 0, fmt.Errorf("字号必须为正数，当前为 %d", style.Size)
	}
	face, err := r.fontFace(style.Font, float64(style.Size), style.Color)
	if err != nil {
		return 0, 0, err
	}
	width := face.TextWidth(content) * layout.MmToPx
	height := face.Metrics().LineHeight * layout.MmToPx
	return int(math.Ceil(width)), int(math.Ceil(height)), nil
}

func (r *Renderer) fontFace(name string, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(r.fontResource(name))
	if err != nil {
		return nil, err
	}
	return family.Face(sizePx*pxToPt, col, style, canvas.FontNormal), nil
}

// fontResource 按名字查找已登记的字体，未登记时使用内置默认字体。
func (r *Renderer) fontResource(name string) layout.FontResource {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if font, ok := r.fonts[name]; ok {
		return font
	}
	return layout.FontResource{Name: name, Src: "builtin:" + fonts.Default}
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.log.Warn("font unavailable, using fallback",
			zap.String("font", font.Name),
			zap.String("src", font.Src),
			zap.Error(err),
		)
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if fonts.IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 调用方需持有 fontMu。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("hstrip-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}
