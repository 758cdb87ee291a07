package catalog

import (
	"encoding/json"
	"strconv"
)

// Marker 分页控件中的一个位置：页码或省略号
type Marker struct {
	Page     int
	Ellipsis bool
}

var ellipsis = Marker{Ellipsis: true}

func page(n int) Marker { return Marker{Page: n} }

func (m Marker) String() string {
	if m.Ellipsis {
		return "ellipsis"
	}
	return strconv.Itoa(m.Page)
}

func (m Marker) MarshalJSON() ([]byte, error) {
	if m.Ellipsis {
		return json.Marshal("ellipsis")
	}
	return json.Marshal(m.Page)
}

// Markers 生成紧凑的分页标记：
//
//	total <= 7              1..total
//	current <= 3            1 2 3 4 … total
//	current >= total-2      1 … total-3 total-2 total-1 total
//	其他                    1 … current-1 current current+1 … total
func Markers(current, total int) []Marker {
	if total <= 7 {
		markers := make([]Marker, 0, total)
		for i := 1; i <= total; i++ {
			markers = append(markers, page(i))
		}
		return markers
	}

	switch {
	case current <= 3:
		return []Marker{page(1), page(2), page(3), page(4), ellipsis, page(total)}
	case current >= total-2:
		return []Marker{page(1), ellipsis, page(total - 3), page(total - 2), page(total - 1), page(total)}
	default:
		return []Marker{page(1), ellipsis, page(current - 1), page(current), page(current + 1), ellipsis, page(total)}
	}
}
