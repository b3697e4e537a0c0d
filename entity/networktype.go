package entity

import (
	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
)

// entity/roadnet/network.go的依赖倒置
// 说明：路网构建后只读，车辆与渲染查询可以共享同一实例
type IRoadNetwork interface {
	// 输入Road ID，查找路段，如果不存在则panic
	Road(id int32) *roadnet.Road
	// 输入Node ID，查找Node，如果不存在则panic
	Node(id int32) *roadnet.Node
	NumRoads() int
	Roads() []roadnet.Road

	RangeQuery(b orb.Bound) []*roadnet.Road // 视口范围查询
	NearestRoad(p orb.Point) *roadnet.Road  // 最近路段
}
