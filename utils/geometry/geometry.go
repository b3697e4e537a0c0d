// 平面几何工具函数，统一使用orb.Point作为点类型（X向东，Y向南）
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance 两点欧氏距离
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Blend 线性插值
// 功能：计算a到b之间比例为t的点
// 参数：a-起点，b-终点，t-比例（0返回a，1返回b）
// 返回：插值点
func Blend(a, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}

// Bearing 从a指向b的方位角（弧度，atan2）
// 说明：a与b重合时返回0
func Bearing(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// AngleDiff 有符号角度差
// 功能：计算从from转到to所需的最小角度
// 返回：(-π, π]范围内的弧度值
func AngleDiff(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// AbsAngleDiff 无符号角度差，范围[0, π]
func AbsAngleDiff(a, b float64) float64 {
	return math.Abs(AngleDiff(a, b))
}

// Alignment 方向一致度
// 功能：将两个方向的夹角映射到[0,1]，同向为1，反向为0
func Alignment(a, b float64) float64 {
	return 1 - AbsAngleDiff(a, b)/math.Pi
}
