package car

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/geometry"
)

const (
	baseWeight    = 1.0 // 每个候选路段的基础权重，保证任何选项都有被选中的可能
	minTurnFactor = 0.2 // 转弯减速后的最小速度比例
	turnPenalty   = 1.5 // 转弯减速系数
)

// Update 单帧更新
// 功能：更新速度，沿折线推进位置，记录轨迹，到达路段末端时执行路口决策
// 参数：in-本帧输入（玩家控制或自动驾驶感知）
// 算法说明：
// 1. 速度：玩家按加速/刹车输入，自动驾驶低于最大速度时持续加速；每帧乘以摩擦系数并限制在[0, maxSpeed]
// 2. 速度低于restSpeed时本帧不移动
// 3. t += speed / 当前折线段长度；t>=1时t归零并进入下一折线段，用完路段的全部点时进入路口决策
// 4. 重新计算位置与朝向，与上一轨迹点距离足够时记录轨迹
// 说明：已坠毁或未出生的车辆不做任何事
func (c *Car) Update(in Input) {
	if c.crashed || c.road == nil {
		return
	}
	c.updateSpeed(in.Control)
	if c.speed < restSpeed {
		return
	}

	a, b := c.bracket()
	if l := geometry.Distance(a, b); l > 0 {
		c.t += c.speed / l
	} else {
		c.t = 1
	}
	if c.t >= 1 {
		c.t = 0
		c.pointIndex++
		if c.pointIndex >= len(c.road.Points)-1 {
			// 路口决策可能导致坠毁或重生，此时位置与轨迹已由对应流程处理
			if !c.resolveIntersection(in) {
				return
			}
		}
	}
	c.refreshPose()
	c.recordTrail()
}

func (c *Car) updateSpeed(ctl Control) {
	p := c.params
	switch c.role {
	case RolePlayer:
		if ctl.Accelerate {
			c.speed += p.Acceleration
		}
		if ctl.Brake {
			c.speed -= p.Braking
		}
	case RoleBot:
		if c.speed < p.MaxSpeed {
			c.speed += p.Acceleration
		}
	}
	c.speed = lo.Clamp(c.speed*p.Friction, 0, p.MaxSpeed)
}

// candidates 路口候选出边
// 说明：排除当前路段的反向路段以避免无意义的掉头；若排除后没有候选，则掉头是唯一选择
func (c *Car) candidates(node *roadnet.Node) []*roadnet.Road {
	network := c.ctx.Network()
	ids := lo.Filter(node.Out, func(id int32, _ int) bool {
		return id != c.road.Reverse
	})
	if len(ids) == 0 {
		ids = node.Out
	}
	return lo.Map(ids, func(id int32, _ int) *roadnet.Road {
		return network.Road(id)
	})
}

// resolveIntersection 路口决策
// 功能：在当前路段终点选择下一路段并施加转弯减速
// 返回：车辆是否继续行驶在新路段上（false表示坠毁或已重生）
// 说明：终点没有任何出边时，自动驾驶车辆重生（远离玩家），玩家坠毁
func (c *Car) resolveIntersection(in Input) bool {
	node := c.ctx.Network().Node(c.road.End)
	if len(node.Out) == 0 {
		if c.role == RoleBot {
			c.Spawn(livePosition(in.Target))
		} else {
			c.crash(ReasonDeadEnd)
		}
		return false
	}
	cands := c.candidates(node)
	var next *roadnet.Road
	if c.role == RolePlayer {
		next = choosePlayer(cands, in.Steer)
	} else {
		weights := c.botWeights(cands, in.Target, in.Bots)
		next = cands[c.ctx.Rand().DiscreteDistribution(weights)]
	}
	c.speed *= turnFactor(geometry.AbsAngleDiff(c.heading, next.StartBearing))
	c.road = next
	c.pointIndex = 0
	c.t = 0
	return true
}

// turnFactor 转弯后的速度比例，转角越大损失越多，但不低于minTurnFactor
func turnFactor(turn float64) float64 {
	return math.Max(minTurnFactor, 1-turn/math.Pi*turnPenalty)
}

// choosePlayer 选择起始方向与期望方向夹角最小的候选
func choosePlayer(cands []*roadnet.Road, steer float64) *roadnet.Road {
	return lo.MinBy(cands, func(a, b *roadnet.Road) bool {
		return geometry.AbsAngleDiff(steer, a.StartBearing) < geometry.AbsAngleDiff(steer, b.StartBearing)
	})
}

// botWeights 自动驾驶车辆的候选权重
// 功能：计算每个候选路段被选中的相对权重
// 参数：cands-候选路段，target-吸引目标（玩家，可为nil），bots-全部自动驾驶车辆
// 返回：与cands一一对应的权重
// 算法说明：
//  1. 每个候选的基础权重为baseWeight
//  2. 目标存活时，加上 方向一致度(候选方向, 指向目标的方向) * 吸引系数
//  3. 感知半径内存在其他自动驾驶车辆时，取最近的一辆，
//     加上 方向一致度(候选方向, 背离该车的方向) * 排斥系数 * (1 - 距离/感知半径)
//
// 说明：方向一致度为1-夹角/π；排斥系数远大于吸引系数，近处的车辆主导决策
func (c *Car) botWeights(cands []*roadnet.Road, target *Car, bots []*Car) []float64 {
	ai := c.ctx.RuntimeConfig().All.AI
	weights := lo.Map(cands, func(_ *roadnet.Road, _ int) float64 {
		return baseWeight
	})
	if target != nil && target != c && target.Spawned() && !target.crashed {
		toTarget := geometry.Bearing(c.pos, target.pos)
		for i, r := range cands {
			weights[i] += geometry.Alignment(r.StartBearing, toTarget) * ai.AttractionWeight
		}
	}
	if nearest, d := c.nearestBot(bots, ai.DetectionRadius); nearest != nil {
		away := geometry.Bearing(nearest.pos, c.pos)
		proximity := 1 - d/ai.DetectionRadius
		for i, r := range cands {
			weights[i] += geometry.Alignment(r.StartBearing, away) * ai.RepulsionWeight * proximity
		}
	}
	return weights
}

// nearestBot 感知半径内最近的其他自动驾驶车辆
func (c *Car) nearestBot(bots []*Car, radius float64) (*Car, float64) {
	var nearest *Car
	best := radius
	for _, o := range bots {
		if o == c || !o.Spawned() {
			continue
		}
		if d := geometry.Distance(c.pos, o.pos); d < best {
			nearest, best = o, d
		}
	}
	return nearest, best
}

// livePosition 已出生车辆的位置，用作重生时的回避点
func livePosition(c *Car) *orb.Point {
	if c == nil || !c.Spawned() {
		return nil
	}
	p := c.pos
	return &p
}
