package layout

import (
	"encoding/json"
	"os"

	"github.com/ByLCY/hstrip/drawable"
)

// DebugView 是写入调试 JSON 的结构：画面信息加上完整的放置树。
type DebugView struct {
	Frame Frame              `json:"frame"`
	Meta  DocumentMeta       `json:"meta"`
	Root  drawable.Placement `json:"root"`
}

// Describe 生成调试视图。
func Describe(res *Result) DebugView {
	view := DebugView{Frame: res.Frame, Meta: res.Meta}
	if res.Root != nil {
		view.Root = res.Root.Snapshot()
	}
	return view
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(Describe(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
