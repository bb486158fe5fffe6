// Package renderer 定义把布局结果输出为文件或终端预览的后端接口。
package renderer

import (
	"github.com/ByLCY/hstrip/elements"
	"github.com/ByLCY/hstrip/layout"
)

// Renderer 将布局结果输出为最终数据，例如 PDF、SVG、PNG 或终端文本。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 是 CLI 需要的完整后端：既负责渲染，也在布局阶段提供文本测量与图片加载。
type Backend interface {
	Renderer
	elements.TextMeasurer
	layout.AssetLoader
}

// BuildOptions 用后端填充布局选项。
func BuildOptions(b Backend, trim bool) layout.BuildOptions {
	return layout.BuildOptions{Measurer: b, Assets: b, TrimTrailingSpacing: trim}
}
