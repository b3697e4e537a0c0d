package roadnet

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/geometry"
)

const (
	minBearingDistance = 10.0 // 计算起始方向时参考点与首点的最小距离
)

// Network 路网
// 功能：保存由原始线要素构建的有向图与空间索引，构建完成后只读
// 说明：Node与Road均以数组存储，相互引用一律使用下标
type Network struct {
	proj      Projection
	nodes     []Node
	roads     []Road
	nodeIndex map[Key]int32 // 量化坐标->Node ID
	grid      *grid
	bound     orb.Bound
}

// Build 构建路网
// 功能：将经纬度折线投影到平面，在交叉点处切分并去重，生成双向路段与空间索引
// 参数：features-原始线要素，cellSize-空间索引网格边长（<=0时使用默认值）
// 返回：构建完成的路网（输入为空时为空路网）
// 算法说明：
// 1. 以全部坐标外包框中心为原点投影，合并连续的同一量化坐标点，不足2个点的要素丢弃
// 2. 统计各量化坐标在所有折线中的出现次数，出现多于一次的点为交叉点或共享端点
// 3. 沿折线累积点，遇到交叉点或末点时输出一对正反向路段，并从切分点重新开始累积
// 4. 路段首尾点吸附到去重后的Node坐标，登记为起点Node的出边并插入空间索引
func Build(features []Feature, cellSize float64) *Network {
	n := &Network{
		proj:      newProjection(features),
		nodes:     make([]Node, 0),
		roads:     make([]Road, 0),
		nodeIndex: make(map[Key]int32),
		grid:      newGrid(cellSize),
	}

	type line struct {
		feature Feature
		points  orb.LineString
	}
	lines := make([]line, 0, len(features))
	for i, f := range features {
		points := make(orb.LineString, 0, len(f.Coords))
		for _, c := range f.Coords {
			p := n.proj.Project(c)
			if len(points) > 0 && keyOf(points[len(points)-1]) == keyOf(p) {
				continue
			}
			points = append(points, p)
		}
		if len(points) < 2 {
			log.Debugf("skip degenerate feature %d (%q): %d distinct points", i, f.Name, len(points))
			continue
		}
		lines = append(lines, line{feature: f, points: points})
	}

	counts := make(map[Key]int)
	for _, l := range lines {
		for _, p := range l.points {
			counts[keyOf(p)]++
		}
	}

	for _, l := range lines {
		acc := orb.LineString{l.points[0]}
		for i := 1; i < len(l.points); i++ {
			p := l.points[i]
			acc = append(acc, p)
			if (counts[keyOf(p)] > 1 || i == len(l.points)-1) && len(acc) >= 2 {
				n.addRoadPair(acc, l.feature)
				acc = orb.LineString{p}
			}
		}
	}

	for i := range n.roads {
		if i == 0 {
			n.bound = n.roads[i].Bound
		} else {
			n.bound = n.bound.Union(n.roads[i].Bound)
		}
	}
	log.Infof("road network built: %d features (%d kept), %d nodes, %d roads, %d grid cells",
		len(features), len(lines), len(n.nodes), len(n.roads), len(n.grid.cells))
	return n
}

// addRoadPair 输出一对互为反向的路段
func (n *Network) addRoadPair(points orb.LineString, f Feature) {
	forwardID := int32(len(n.roads))
	reverseID := forwardID + 1
	forward := points.Clone()
	reverse := points.Clone()
	reverse.Reverse()
	n.addRoad(forwardID, forward, reverseID, f)
	n.addRoad(reverseID, reverse, forwardID, f)
}

func (n *Network) addRoad(id int32, points orb.LineString, reverse int32, f Feature) {
	start := n.resolveNode(points[0])
	end := n.resolveNode(points[len(points)-1])
	// 吸附到Node坐标，消除取整误差
	points[0] = n.nodes[start].Pos
	points[len(points)-1] = n.nodes[end].Pos
	r := Road{
		ID:           id,
		Points:       points,
		Start:        start,
		End:          end,
		StartBearing: startBearing(points),
		Reverse:      reverse,
		Name:         f.Name,
		Ref:          f.Ref,
		Length:       planar.Length(points),
		Bound:        points.Bound(),
	}
	n.roads = append(n.roads, r)
	n.nodes[start].Out = append(n.nodes[start].Out, id)
	n.grid.insert(id, r.Bound)
}

// resolveNode 按量化坐标查找或创建Node
func (n *Network) resolveNode(p orb.Point) int32 {
	k := keyOf(p)
	if id, ok := n.nodeIndex[k]; ok {
		return id
	}
	id := int32(len(n.nodes))
	n.nodes = append(n.nodes, Node{ID: id, Key: k, Pos: p})
	n.nodeIndex[k] = id
	return id
}

// startBearing 起始方向
// 说明：取第一个与首点距离不小于minBearingDistance的点，避免首部近似重合点导致方向失真；都不满足时取末点
func startBearing(points orb.LineString) float64 {
	first := points[0]
	for _, p := range points[1:] {
		if geometry.Distance(first, p) >= minBearingDistance {
			return geometry.Bearing(first, p)
		}
	}
	return geometry.Bearing(first, points[len(points)-1])
}

// RangeQuery 范围查询
// 功能：返回与查询框所覆盖网格登记的全部路段（去重，按ID升序）
// 说明：结果是外包框完全位于查询框内的路段的超集，供渲染时裁剪视口
func (n *Network) RangeQuery(b orb.Bound) []*Road {
	if len(n.roads) == 0 {
		return nil
	}
	return lo.Map(n.grid.query(b), func(id int32, _ int) *Road {
		return &n.roads[id]
	})
}

// NearestRoad 最近路段
// 功能：返回几何上距离p最近的路段，空路网返回nil
// 算法说明：
// 1. 先在p所在网格及其8邻域中查找
// 2. 若找到的最近距离不超过网格边长，则结果必然是全局最近（更近的路段一定登记在这些网格中）
// 3. 否则退化为全量扫描
func (n *Network) NearestRoad(p orb.Point) *Road {
	if len(n.roads) == 0 {
		return nil
	}
	size := n.grid.size
	near := orb.Bound{
		Min: orb.Point{p[0] - size, p[1] - size},
		Max: orb.Point{p[0] + size, p[1] + size},
	}
	best, bestD := n.nearestOf(n.grid.query(near), p)
	if best >= 0 && bestD <= size {
		return &n.roads[best]
	}
	all := make([]int32, len(n.roads))
	for i := range all {
		all[i] = int32(i)
	}
	best, _ = n.nearestOf(all, p)
	return &n.roads[best]
}

func (n *Network) nearestOf(ids []int32, p orb.Point) (int32, float64) {
	best, bestD := int32(-1), 0.
	for _, id := range ids {
		d := planar.DistanceFrom(n.roads[id].Points, p)
		if best < 0 || d < bestD {
			best, bestD = id, d
		}
	}
	return best, bestD
}

// Road 根据ID获取路段，不存在则panic
func (n *Network) Road(id int32) *Road {
	if id < 0 || int(id) >= len(n.roads) {
		log.Panicf("no id %d in road data", id)
	}
	return &n.roads[id]
}

// GetOrError 根据ID获取路段，不存在则返回错误
func (n *Network) GetOrError(id int32) (*Road, error) {
	if id < 0 || int(id) >= len(n.roads) {
		return nil, fmt.Errorf("no id %d in road data", id)
	}
	return &n.roads[id], nil
}

// Node 根据ID获取Node，不存在则panic
func (n *Network) Node(id int32) *Node {
	if id < 0 || int(id) >= len(n.nodes) {
		log.Panicf("no id %d in node data", id)
	}
	return &n.nodes[id]
}

// NodeByKey 根据量化坐标查找Node
func (n *Network) NodeByKey(k Key) (*Node, bool) {
	id, ok := n.nodeIndex[k]
	if !ok {
		return nil, false
	}
	return &n.nodes[id], true
}

// Roads 全部路段（只读）
func (n *Network) Roads() []Road {
	return n.roads
}

// Nodes 全部Node（只读）
func (n *Network) Nodes() []Node {
	return n.nodes
}

func (n *Network) NumRoads() int {
	return len(n.roads)
}

func (n *Network) NumNodes() int {
	return len(n.nodes)
}

// Bound 全部路段的平面外包框
func (n *Network) Bound() orb.Bound {
	return n.bound
}

// Projection 构建时使用的投影
func (n *Network) Projection() Projection {
	return n.proj
}

// Unproject 平面坐标->经纬度，用于外部展示
func (n *Network) Unproject(p orb.Point) orb.Point {
	return n.proj.Unproject(p)
}
