package layout

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ByLCY/hstrip/binding"
	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/dsl"
	"github.com/ByLCY/hstrip/elements"
	"github.com/ByLCY/hstrip/fonts"
)

const (
	defaultFontName = "Body"
	defaultFontSrc  = "builtin:" + fonts.Default
	defaultFontSize = 16
)

var defaultTextColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}

// Build 根据 DSL AST 生成画面描述与根布局。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)

	section := doc.Frame()
	if section == nil {
		return nil, fmt.Errorf("文档中缺少 frame 段落")
	}
	frame, err := resolveFrame(section.Params, res)
	if err != nil {
		return nil, err
	}

	if fr, ok := opts.Measurer.(FontResolver); ok {
		fr.RegisterFonts(res.Fonts)
	}

	b := &builder{res: res, data: data, opts: opts}
	rowCmd, err := rootRow(section.Block)
	if err != nil {
		return nil, err
	}
	root, mode, err := b.buildRow(rowCmd, drawable.ModeFitContainer)
	if err != nil {
		return nil, err
	}
	// 顶层 fit 布局由画面内容区决定高度；其他模式保持自身计算出的尺寸。
	if mode == drawable.ModeFitContainer {
		root.SetBounds(frame.Content())
	}

	Logger().Debug("strip built",
		zap.String("name", doc.Name),
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height),
		zap.Stringer("mode", mode),
		zap.Int("children", root.Len()),
	)

	return &Result{
		Frame:     frame,
		Root:      root,
		Resources: res,
		Meta:      meta,
	}, nil
}

type builder struct {
	res  ResourceSet
	data any
	opts BuildOptions
}

func rootRow(block *dsl.Block) (*dsl.Command, error) {
	if block == nil {
		return nil, fmt.Errorf("frame 段落缺少内容")
	}
	var row *dsl.Command
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		if stmt.Command.Name != "row" {
			return nil, fmt.Errorf("frame 只能包含 row，第 %d 行出现 %s", stmt.Command.Pos.Line, stmt.Command.Name)
		}
		if row != nil {
			return nil, fmt.Errorf("frame 只能包含一个顶层 row（第 %d 行）", stmt.Command.Pos.Line)
		}
		row = stmt.Command
	}
	if row == nil {
		return nil, fmt.Errorf("frame 中缺少 row")
	}
	return row, nil
}

// buildRow 构建一个水平布局。defaultMode 在未写 mode 属性时使用：
// 顶层默认 fit；嵌套 row 默认 wrap，这样它的 bounds 在父布局读取前就已确定。
func (b *builder) buildRow(cmd *dsl.Command, defaultMode drawable.Mode) (*drawable.Horizontal, drawable.Mode, error) {
	_, attrs := parseArgs(cmd.Args, false)

	spacing := 0
	if v := attrs["spacing"]; v != "" {
		s, err := parseUnits(v)
		if err != nil {
			return nil, 0, fmt.Errorf("row spacing（第 %d 行）: %w", cmd.Pos.Line, err)
		}
		spacing = s
	}

	mode := defaultMode
	if v := attrs["mode"]; v != "" {
		m, err := drawable.ParseMode(v)
		if err != nil {
			return nil, 0, fmt.Errorf("row mode（第 %d 行）: %w", cmd.Pos.Line, err)
		}
		mode = m
	}

	opts := drawable.Options{TrimTrailingSpacing: b.opts.TrimTrailingSpacing}
	if v := attrs["trim"]; v != "" {
		trim, err := strconv.ParseBool(v)
		if err != nil {
			return nil, 0, fmt.Errorf("row trim（第 %d 行）: %w", cmd.Pos.Line, err)
		}
		opts.TrimTrailingSpacing = trim
	}

	var children []drawable.Drawable
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			child, err := b.buildElement(stmt.Command)
			if err != nil {
				return nil, 0, err
			}
			if child != nil {
				children = append(children, child)
			}
		}
	}

	row := drawable.NewHorizontalWithOptions(children, spacing, mode, opts)
	if err := b.applyPaint(row, attrs, cmd); err != nil {
		return nil, 0, err
	}
	return row, mode, nil
}

// buildElement 处理 row 内的一条命令。未知命令记录警告后忽略。
func (b *builder) buildElement(cmd *dsl.Command) (drawable.Drawable, error) {
	var (
		d     drawable.HostDrawable
		attrs map[string]string
		err   error
	)
	switch strings.ToLower(cmd.Name) {
	case "row":
		row, mode, err := b.buildRow(cmd, drawable.ModeWrap)
		if err != nil {
			return nil, err
		}
		return newNestedRow(row, mode), nil
	case "rect", "circle", "ellipse":
		d, attrs, err = b.buildShape(cmd)
	case "image":
		d, attrs, err = b.buildImage(cmd)
	case "text":
		d, attrs, err = b.buildText(cmd)
	case "spacer":
		d, attrs, err = b.buildSpacer(cmd)
	default:
		Logger().Warn("ignoring unknown command", zap.String("command", cmd.Name), zap.Int("line", cmd.Pos.Line))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := b.applyPaint(d, attrs, cmd); err != nil {
		return nil, err
	}
	return d, nil
}

func (b *builder) buildShape(cmd *dsl.Command) (drawable.HostDrawable, map[string]string, error) {
	_, attrs := parseArgs(cmd.Args, false)
	width, height, err := b.size(cmd, attrs)
	if err != nil {
		return nil, nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("%s 需要正的 width 与 height（第 %d 行）", cmd.Name, cmd.Pos.Line)
	}

	var style elements.ShapeStyle
	if v := attrs["fill"]; v != "" {
		c, err := resolveColor(v, b.res)
		if err != nil {
			return nil, nil, fmt.Errorf("%s fill（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		style.Fill = &c
	}
	if v := attrs["stroke"]; v != "" {
		c, err := resolveColor(v, b.res)
		if err != nil {
			return nil, nil, fmt.Errorf("%s stroke（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		style.Stroke = &c
	}
	if v := attrs["stroke-width"]; v != "" {
		w, err := parseUnits(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s stroke-width（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		style.StrokeWidth = w
	}
	if style.Fill == nil && style.Stroke == nil {
		c := defaultTextColor
		style.Fill = &c
	}

	kind := elements.ShapeRect
	if name := strings.ToLower(cmd.Name); name == "circle" || name == "ellipse" {
		kind = elements.ShapeEllipse
	}
	return elements.NewShape(kind, width, height, style), attrs, nil
}

func (b *builder) buildImage(cmd *dsl.Command) (drawable.HostDrawable, map[string]string, error) {
	src, attrs := parseArgs(cmd.Args, true)
	if v := attrs["src"]; v != "" {
		src = v
	}
	src = binding.Interpolate(src, b.data)
	if src == "" {
		return nil, nil, fmt.Errorf("image 缺少 src（第 %d 行）", cmd.Pos.Line)
	}
	if b.opts.Assets == nil {
		return nil, nil, fmt.Errorf("layout: 缺少图片加载后端 AssetLoader")
	}
	img, err := b.opts.Assets.LoadImage(src)
	if err != nil {
		return nil, nil, fmt.Errorf("加载图片 %s 失败: %w", src, err)
	}
	width, height, err := b.size(cmd, attrs)
	if err != nil {
		return nil, nil, err
	}
	return elements.NewImage(img, width, height), attrs, nil
}

func (b *builder) buildText(cmd *dsl.Command) (drawable.HostDrawable, map[string]string, error) {
	fontName, attrs := parseArgs(cmd.Args, true)
	content := binding.Interpolate(extractText(cmd.Block), b.data)
	if content == "" {
		return nil, nil, fmt.Errorf("text 缺少文本内容（第 %d 行）", cmd.Pos.Line)
	}
	font, err := resolveFontResource(fontName, b.res)
	if err != nil {
		return nil, nil, err
	}

	style := drawable.TextStyle{Font: font.Name, Size: defaultFontSize, Color: defaultTextColor}
	if v := attrs["size"]; v != "" {
		size, err := parseUnits(v)
		if err != nil {
			return nil, nil, fmt.Errorf("text size（第 %d 行）: %w", cmd.Pos.Line, err)
		}
		style.Size = size
	}
	if v := attrs["color"]; v != "" {
		c, err := resolveColor(v, b.res)
		if err != nil {
			return nil, nil, fmt.Errorf("text color（第 %d 行）: %w", cmd.Pos.Line, err)
		}
		style.Color = c
	}

	txt, err := elements.NewText(content, style, b.opts.Measurer)
	if err != nil {
		return nil, nil, err
	}
	return txt, attrs, nil
}

func (b *builder) buildSpacer(cmd *dsl.Command) (drawable.HostDrawable, map[string]string, error) {
	_, attrs := parseArgs(cmd.Args, false)
	width, height, err := b.size(cmd, attrs)
	if err != nil {
		return nil, nil, err
	}
	return elements.NewSpacer(width, height), attrs, nil
}

func (b *builder) size(cmd *dsl.Command, attrs map[string]string) (int, int, error) {
	var width, height int
	if v := attrs["width"]; v != "" {
		w, err := parseUnits(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%s width（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		width = w
	}
	if v := attrs["height"]; v != "" {
		h, err := parseUnits(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%s height（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		height = h
	}
	return width, height, nil
}

// applyPaint 处理通用的 alpha / tint / grayscale 属性。
func (b *builder) applyPaint(d drawable.HostDrawable, attrs map[string]string, cmd *dsl.Command) error {
	if v := attrs["alpha"]; v != "" {
		alpha, err := parseAlpha(v)
		if err != nil {
			return fmt.Errorf("%s alpha（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		d.SetAlpha(alpha)
	}
	if v := attrs["tint"]; v != "" {
		c, err := resolveColor(v, b.res)
		if err != nil {
			return fmt.Errorf("%s tint（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		d.SetColorFilter(drawable.Tint(c))
	}
	if v := attrs["grayscale"]; v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s grayscale（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
		}
		if on {
			d.SetColorFilter(drawable.Grayscale())
		}
	}
	return nil
}

// parseAlpha 接受 0-255 的整数或 0-1 的小数。
func parseAlpha(value string) (int, error) {
	if strings.Contains(value, ".") {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, err
		}
		return drawable.ClampAlpha(int(f*255 + 0.5)), nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return drawable.ClampAlpha(v), nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]color.NRGBA{},
	}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("颜色资源 %s: %w", name, err)
				}
				res.Colors[name] = c
			}
		}
	}

	if _, ok := res.Fonts[defaultFontName]; !ok {
		res.Fonts[defaultFontName] = FontResource{Name: defaultFontName, Src: defaultFontSrc}
	}
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "hstrip",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = valueToString(stmt.Assignment.Value)
		case "style":
			font.Style = valueToString(stmt.Assignment.Value)
		}
	}
	return font
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

// resolveFrame 解析 frame 头部：width/height 必填，margin 接受 1-4 个值（CSS 顺序）。
func resolveFrame(params []*dsl.Lexeme, res ResourceSet) (Frame, error) {
	var frame Frame
	for i := 0; i < len(params); i++ {
		key := strings.ToLower(params[i].Value)
		switch key {
		case "margin":
			var vals []int
			for j := i + 1; j < len(params) && len(vals) < 4 && params[j].Type == "Number"; j++ {
				v, err := parseUnits(params[j].Value)
				if err != nil {
					return frame, fmt.Errorf("frame margin: %w", err)
				}
				vals = append(vals, v)
			}
			i += len(vals)
			switch len(vals) {
			case 0:
				return frame, fmt.Errorf("frame margin 缺少数值")
			case 1:
				v := vals[0]
				frame.Margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
			case 2:
				frame.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
			case 3:
				frame.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
			case 4:
				frame.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
			}
		case "width", "height", "background":
			if i+1 >= len(params) {
				return frame, fmt.Errorf("frame %s 缺少取值", key)
			}
			val := params[i+1].Value
			i++
			if key == "background" {
				c, err := resolveColor(val, res)
				if err != nil {
					return frame, fmt.Errorf("frame background: %w", err)
				}
				frame.Background = &c
				continue
			}
			v, err := parseUnits(val)
			if err != nil {
				return frame, fmt.Errorf("frame %s: %w", key, err)
			}
			if key == "width" {
				frame.Width = v
			} else {
				frame.Height = v
			}
		default:
			return frame, fmt.Errorf("frame 不支持的参数 %s", params[i].Value)
		}
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return frame, fmt.Errorf("frame 需要正的 width 与 height")
	}
	return frame, nil
}

// parseArgs 把 key value 成对的参数转换为 map；withLeading 为 true 且参数个数为奇数时，
// 第一个参数作为前导值返回（例如 text 的字体名、image 的 src）。
func parseArgs(args []*dsl.Lexeme, withLeading bool) (string, map[string]string) {
	result := map[string]string{}
	cursor := 0
	var leading string
	if withLeading && len(args)%2 == 1 {
		leading = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[strings.ToLower(args[cursor].Value)] = args[cursor+1].Value
		cursor += 2
	}
	return leading, result
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if name == "" {
		name = defaultFontName
	}
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义", name)
}

func resolveColor(value string, res ResourceSet) (color.NRGBA, error) {
	if c, ok := res.Colors[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "#") {
		return parseColor(value)
	}
	return color.NRGBA{}, fmt.Errorf("颜色 %s 未定义", value)
}

// parseColor 支持 #rgb、#rrggbb 与 #rrggbbaa。
func parseColor(value string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
