package layout

import (
	"github.com/ByLCY/hstrip/drawable"
)

// nestedRow 把嵌套 row 包装成子元素：固有尺寸固定为构建时的自然尺寸。
// Horizontal 的 fit 重算会把自身固有高度改成容器高度，父布局若直接读取，
// 同样的 bounds 再算一次就会得到不同的结果。
type nestedRow struct {
	*drawable.Horizontal
	iw, ih int
}

var _ drawable.HostDrawable = (*nestedRow)(nil)

// newNestedRow 记录 row 的自然尺寸。fit 模式的 row 在构建时还没有容器高度，先按固有尺寸量一次。
func newNestedRow(row *drawable.Horizontal, mode drawable.Mode) *nestedRow {
	if mode == drawable.ModeFitContainer {
		row.SetChildren(row.Children(), drawable.ModeIntrinsic)
	}
	return &nestedRow{Horizontal: row, iw: row.IntrinsicWidth(), ih: row.IntrinsicHeight()}
}

func (n *nestedRow) IntrinsicWidth() int  { return n.iw }
func (n *nestedRow) IntrinsicHeight() int { return n.ih }
