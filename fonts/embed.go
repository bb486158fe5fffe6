// Package fonts 提供随程序一起编译的 Latin Modern 字体，DSL 中用 builtin:<name> 引用。
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// Default 是未声明字体时使用的内置字体名。
const Default = "lmsans10-regular"

var builtin = map[string][]byte{
	"lmroman10-regular": lmroman10regular.TTF,
	"lmroman10-bold":    lmroman10bold.TTF,
	"lmroman10-italic":  lmroman10italic.TTF,
	"lmsans10-regular":  lmsans10regular.TTF,
	"lmsans10-bold":     lmsans10bold.TTF,
	"lmmono10-regular":  lmmono10regular.TTF,
}

// IsBuiltin 判断 src 是否引用内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:")
}

// Load 返回内置字体的字节数据，src 可写为 "builtin:lmroman10-regular" 或直接 "lmroman10-regular"。
func Load(src string) ([]byte, error) {
	name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
	name = strings.ToLower(strings.TrimSpace(name))
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 按字母序返回所有内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
