package layout

// 该文件定义布局结果与资源描述，供布局、渲染与调试 JSON 共用。

import (
	"image"
	"image/color"

	"github.com/ByLCY/hstrip/drawable"
)

// Result 保存构建好的画面、根布局与资源信息。
type Result struct {
	Frame     Frame                `json:"frame"`
	Root      *drawable.Horizontal `json:"-"`
	Resources ResourceSet          `json:"resources"`
	Meta      DocumentMeta         `json:"meta"`
}

// Frame 描述输出画面，尺寸与边距均为整数单位（px）。
type Frame struct {
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Margin     Margin       `json:"margin"`
	Background *color.NRGBA `json:"background,omitempty"` // 为空表示透明
}

// Content 返回扣除边距后的内容区域，以内容区左上角为原点。
func (f Frame) Content() image.Rectangle {
	w := f.Width - f.Margin.Left - f.Margin.Right
	h := f.Height - f.Margin.Top - f.Margin.Bottom
	return image.Rect(0, 0, max(w, 0), max(h, 0))
}

// Margin 以整数单位保存。
type Margin struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// ResourceSet 记录解析出的字体与颜色定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]color.NRGBA  `json:"colors"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:<name>。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style"`
}

// DocumentMeta 保存输出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
