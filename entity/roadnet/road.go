package roadnet

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	NoReverse int32 = -1 // 没有反向路段（单向断头路）
)

// Feature 原始线要素
// 功能：构建路网的输入，坐标为(经度, 纬度)
// 说明：Name与Ref仅作为展示用元数据透传到路段上
type Feature struct {
	Name   string
	Ref    string
	Coords orb.LineString
}

// Key 量化坐标，作为Node的稳定标识
type Key struct {
	X, Y int64
}

func keyOf(p orb.Point) Key {
	return Key{X: int64(math.Round(p[0])), Y: int64(math.Round(p[1]))}
}

func (k Key) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Y)
}

// Node 路口或端点
type Node struct {
	ID  int32     // 在路网数组中的下标
	Key Key       // 量化坐标
	Pos orb.Point // 平面坐标
	Out []int32   // 以该节点为起点的路段ID
}

// Road 有向路段
// 功能：两个Node之间的一段折线，首尾点与Node坐标严格相等
type Road struct {
	ID           int32          // 在路网数组中的下标
	Points       orb.LineString // 折线（至少2个点）
	Start, End   int32          // 起点、终点Node ID
	StartBearing float64        // 起始方向（弧度）
	Reverse      int32          // 反向路段ID，NoReverse表示不存在
	Name, Ref    string         // 透传的道路名称与编号
	Length       float64        // 折线总长度
	Bound        orb.Bound      // 外包框
}

// String 获取Road的字符串表示
func (r *Road) String() string {
	return fmt.Sprintf("Road %d", r.ID)
}

// First 首点
func (r *Road) First() orb.Point {
	return r.Points[0]
}

// Last 末点
func (r *Road) Last() orb.Point {
	return r.Points[len(r.Points)-1]
}

// HasReverse 是否存在反向路段
func (r *Road) HasReverse() bool {
	return r.Reverse != NoReverse
}
