package car

import (
	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/geometry"
)

// Collide 有序车辆对的碰撞检查（c为主体，other为对方）
// 功能：检查车身相撞与c撞上other的轨迹
// 参数：other-对方车辆，avoid-自动驾驶车辆重生时需要远离的位置（可为nil）
// 返回：本次检查是否发生碰撞
// 算法说明：
//  1. 车身：双方都未坠毁且距离小于HeadOnDistance时双方坠毁；若双方都是自动驾驶车辆则双方立即重生
//  2. 轨迹：c未坠毁且other轨迹至少2个点时，任一轨迹点距c小于TraceDistance则c坠毁；
//     只有撞上的是另一辆自动驾驶车辆的轨迹时c才重生，撞上玩家轨迹的车辆保持坠毁
//  3. 轨迹碰撞不影响other
//
// 说明：每帧每个有序对调用一次，两个方向都要检查
func (c *Car) Collide(other *Car, avoid *orb.Point) bool {
	if other == nil || other == c || !c.Spawned() || !other.Spawned() {
		return false
	}
	cc := c.ctx.RuntimeConfig().All.Collision

	if !c.crashed && !other.crashed && geometry.Distance(c.pos, other.pos) < cc.HeadOnDistance {
		c.crash(ReasonHeadOn)
		other.crash(ReasonHeadOn)
		if c.IsBot() && other.IsBot() {
			c.Spawn(avoid)
			other.Spawn(avoid)
		}
		return true
	}

	if c.crashed || other.trail.Len() < 2 {
		return false
	}
	hit := false
	other.trail.Each(func(_ int, p orb.Point) bool {
		hit = geometry.Distance(c.pos, p) < cc.TraceDistance
		return !hit
	})
	if !hit {
		return false
	}
	c.crash(ReasonTrace)
	if c.IsBot() && other.IsBot() {
		c.Spawn(avoid)
	}
	return true
}
