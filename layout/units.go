package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 几何单位统一为 px（1/96 英寸），DSL 中的长度在这里换算。

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // 无单位数字按 px 处理
	UnitPX
	UnitPT
	UnitMM
	UnitCM
	UnitIN
)

// Conversion constants between px, pt and mm.
const (
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4

	PxToMm = MmPerIn / PxPerIn
	MmToPx = PxPerIn / MmPerIn
	PtToPx = PxPerIn / PtPerIn
)

// String returns a short string for a Unit value.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToPX converts the length to px.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitCM:
		return l.Value * 10 * MmToPx
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// Units 四舍五入为整数几何单位。
func (l Length) Units() int {
	return int(math.Round(l.ToPX()))
}

// ParseLength parses a DSL length string preserving its unit.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// parseUnits 解析长度并换算为整数单位。
func parseUnits(value string) (int, error) {
	l, err := ParseLength(value)
	if err != nil {
		return 0, err
	}
	return l.Units(), nil
}
