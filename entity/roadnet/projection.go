package roadnet

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	MetersPerDegree = 111320.0 // 每度纬度对应的米数
)

// Projection 局部等距圆柱投影
// 功能：以输入数据外包框中心为原点，将经纬度换算为以米为单位的平面坐标
// 说明：只在城市尺度范围内近似保距，x向东，y向南（屏幕坐标方向）
type Projection struct {
	Center orb.Point // 中心经纬度
	cosLat float64
}

// newProjection 根据所有要素坐标的外包框计算投影中心
func newProjection(features []Feature) Projection {
	var b orb.Bound
	first := true
	for _, f := range features {
		for _, c := range f.Coords {
			if first {
				b = c.Bound()
				first = false
			} else {
				b = b.Extend(c)
			}
		}
	}
	center := b.Center()
	return Projection{
		Center: center,
		cosLat: math.Cos(center.Lat() * math.Pi / 180),
	}
}

// Project 经纬度->平面坐标
func (p Projection) Project(ll orb.Point) orb.Point {
	return orb.Point{
		(ll.Lon() - p.Center.Lon()) * MetersPerDegree * p.cosLat,
		-(ll.Lat() - p.Center.Lat()) * MetersPerDegree,
	}
}

// Unproject 平面坐标->经纬度
func (p Projection) Unproject(xy orb.Point) orb.Point {
	return orb.Point{
		xy[0]/(MetersPerDegree*p.cosLat) + p.Center.Lon(),
		-xy[1]/MetersPerDegree + p.Center.Lat(),
	}
}
