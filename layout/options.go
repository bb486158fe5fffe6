package layout

import (
	"image"

	"github.com/ByLCY/hstrip/elements"
)

// BuildOptions 配置布局阶段所需的依赖，例如文本测量与图片加载后端。
type BuildOptions struct {
	Measurer elements.TextMeasurer
	Assets   AssetLoader
	// TrimTrailingSpacing 对所有 row 生效，单个 row 可用 trim 属性覆盖。
	TrimTrailingSpacing bool
}

// AssetLoader 负责按 DSL 中的 src 加载图片。
type AssetLoader interface {
	LoadImage(src string) (image.Image, error)
}

// FontResolver 由需要把 DSL 字体名映射为具体字体资源的后端实现。
type FontResolver interface {
	RegisterFonts(fonts map[string]FontResource)
}
