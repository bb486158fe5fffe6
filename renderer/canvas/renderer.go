package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"go.uber.org/zap"

	"github.com/ByLCY/hstrip/layout"
	"github.com/ByLCY/hstrip/renderer"
)

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat 解析格式名，空字符串视为 PDF。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %q", s)
	}
}

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string
	format  Format
	log     *zap.Logger

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fonts          map[string]layout.FontResource // DSL 中声明的字体，按名字索引
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Backend    = (*Renderer)(nil)
	_ layout.FontResolver = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  Format
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
	Logger  *zap.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		log:          opts.Logger,
		fontBlobs:    ingest(opts.Fonts, opts.Logger),
		imageBlobs:   ingest(opts.Images, opts.Logger),
		fonts:        map[string]layout.FontResource{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = FormatPDF
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// ingest 读取注入的资源；读不到的路径只记录警告，真正使用时再报错。
func ingest(resources map[string]Resource, log *zap.Logger) map[string][]byte {
	blobs := make(map[string][]byte, len(resources))
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			blobs[name] = res.Bytes
			continue
		}
		if res.Path == "" {
			continue
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			if log != nil {
				log.Warn("skipping injected resource", zap.String("name", name), zap.Error(err))
			}
			continue
		}
		blobs[name] = data
	}
	return blobs
}

// Format 返回输出格式。
func (r *Renderer) Format() Format { return r.format }

// Render draws the root layout onto a canvas the size of the frame and encodes it.
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

	width, height := toMm(frame.Width), toMm(frame.Height)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	s := newSurface(ctx, r)
	if bg := frame.Background; bg != nil {
		s.FillRect(image.Rect(0, 0, frame.Width, frame.Height), *bg)
	}
	s.Save()
	s.Translate(frame.Margin.Left, frame.Margin.Top)
	result.Root.Draw(s)
	s.Restore()
	if s.err != nil {
		return nil, s.err
	}

	r.log.Debug("canvas rendered",
		zap.String("format", string(r.format)),
		zap.Float64("widthMM", width),
		zap.Float64("heightMM", height),
	)
	return r.encode(c, width, height, result.Meta)
}

func (r *Renderer) encode(c *canvas.Canvas, width, height float64, meta layout.DocumentMeta) ([]byte, error) {
	var buf bytes.Buffer
	switch r.format {
	case FormatSVG:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case FormatPNG:
		// 每个布局单位对应一个像素
		img := rasterizer.Draw(c, canvas.DPMM(layout.MmToPx), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		writer := pdf.New(&buf, width, height, nil)
		applyMeta(writer, meta)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// toMm 将布局单位(px)转换为毫米(mm)。
func toMm(px int) float64 { return float64(px) * layout.PxToMm }
