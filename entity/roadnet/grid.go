package roadnet

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
)

const (
	DefaultCellSize = 2000.0 // 默认网格边长
)

type cell struct {
	X, Y int64
}

// grid 均匀网格空间索引
// 功能：记录每个网格内外包框与之相交的路段ID，同一路段可出现在多个网格中
type grid struct {
	size     float64
	cells    map[cell][]int32
	min, max cell // 已登记网格的范围
}

func newGrid(size float64) *grid {
	if size <= 0 {
		size = DefaultCellSize
	}
	return &grid{size: size, cells: make(map[cell][]int32)}
}

func (g *grid) cellOf(p orb.Point) cell {
	return cell{
		X: int64(math.Floor(p[0] / g.size)),
		Y: int64(math.Floor(p[1] / g.size)),
	}
}

// insert 将路段登记到外包框覆盖的所有网格
func (g *grid) insert(id int32, b orb.Bound) {
	lo, hi := g.cellOf(b.Min), g.cellOf(b.Max)
	if len(g.cells) == 0 {
		g.min, g.max = lo, hi
	} else {
		g.min = cell{min(g.min.X, lo.X), min(g.min.Y, lo.Y)}
		g.max = cell{max(g.max.X, hi.X), max(g.max.Y, hi.Y)}
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			c := cell{x, y}
			g.cells[c] = append(g.cells[c], id)
		}
	}
}

// span 查询框覆盖的网格范围，截断到已登记网格的范围内
// 说明：在浮点域截断后再转换为整数，查询框可以是无界的（±Inf）；与已登记范围不相交或含NaN时返回false
func (g *grid) span(b orb.Bound) (lo, hi cell, ok bool) {
	if len(g.cells) == 0 {
		return
	}
	axis := func(from, to float64, minC, maxC int64) (int64, int64, bool) {
		f, t := math.Floor(from/g.size), math.Floor(to/g.size)
		if math.IsNaN(f) || math.IsNaN(t) || t < float64(minC) || f > float64(maxC) || f > t {
			return 0, 0, false
		}
		return int64(math.Max(f, float64(minC))), int64(math.Min(t, float64(maxC))), true
	}
	var okX, okY bool
	lo.X, hi.X, okX = axis(b.Min[0], b.Max[0], g.min.X, g.max.X)
	lo.Y, hi.Y, okY = axis(b.Min[1], b.Max[1], g.min.Y, g.max.Y)
	return lo, hi, okX && okY
}

// query 返回与查询框所覆盖网格相交的路段ID（去重、升序）
// 说明：按实际存在的网格与查询范围中较小者遍历，避免超大查询框逐格枚举
func (g *grid) query(b orb.Bound) []int32 {
	lo, hi, ok := g.span(b)
	if !ok {
		return []int32{}
	}
	seen := make(map[int32]struct{})
	visit := func(c cell) {
		for _, id := range g.cells[c] {
			seen[id] = struct{}{}
		}
	}
	if span := float64(hi.X-lo.X+1) * float64(hi.Y-lo.Y+1); span > float64(len(g.cells)) {
		for c := range g.cells {
			if c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y {
				visit(c)
			}
		}
	} else {
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				visit(cell{x, y})
			}
		}
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
