package car

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/entity"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/container"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/geometry"
)

const (
	spawnExclusionRadius = 500.0 // 指定回避点时，出生路段首点与回避点的最小距离
	trailMinSpacing      = 5.0   // 轨迹相邻点的最小间距
	restSpeed            = 0.01  // 低于该速度视为静止，不移动
)

// Role 车辆角色
type Role int32

const (
	RolePlayer Role = iota // 玩家
	RoleBot                // 自动驾驶
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleBot:
		return "bot"
	default:
		return fmt.Sprintf("Role(%d)", int32(r))
	}
}

// Reason 坠毁原因
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonDeadEnd Reason = "dead end"
	ReasonHeadOn  Reason = "head-on collision"
	ReasonTrace   Reason = "trace collision"
)

// Control 玩家控制输入
type Control struct {
	Accelerate bool    // 加速
	Brake      bool    // 刹车
	Steer      float64 // 期望行驶方向（弧度），在路口选择最接近的出边
}

// Input 单帧更新输入
// 说明：玩家只使用Control；自动驾驶车辆只读取Target与Bots作为感知输入
type Input struct {
	Control
	Target *Car   // 吸引目标（玩家）
	Bots   []*Car // 全部自动驾驶车辆
}

// Car 车辆实体
// 功能：保存单车运动学状态，沿当前路段推进位置，在路口执行转向决策
// 说明：车辆只引用路网，从不修改路网
type Car struct {
	container.IncrementalItemBase

	ctx entity.ITaskContext

	id     int32
	role   Role
	color  uint32
	params config.Vehicle

	road       *roadnet.Road // 当前路段，nil表示尚未出生
	pointIndex int           // 当前所在折线段的起点下标
	t          float64       // 在当前折线段上的比例，[0,1)
	speed      float64
	pos        orb.Point
	heading    float64
	trail      *container.Ring[orb.Point]

	crashed  bool
	reason   Reason
	removing bool // 已登记从车辆管理器移除

	onCrash func(c *Car, reason Reason) // 坠毁回调（统计用）
	onSpawn func(c *Car)                // 出生回调（统计用）
}

// New 创建车辆（未出生，需调用Spawn）
func New(ctx entity.ITaskContext, id int32, role Role, color uint32) *Car {
	params := ctx.RuntimeConfig().All.Bot
	if role == RolePlayer {
		params = ctx.RuntimeConfig().All.Player
	}
	return &Car{
		ctx:    ctx,
		id:     id,
		role:   role,
		color:  color,
		params: params,
		trail:  container.NewRing[orb.Point](params.TrailLength),
	}
}

// Spawn 出生
// 功能：随机选择一条路段作为起点，重置运动学状态与轨迹，清除坠毁状态
// 参数：avoid-需要远离的位置（可为nil），只在存在首点距其超过spawnExclusionRadius的路段时生效
// 说明：路网为空时不做任何事，车辆保持原状态
func (c *Car) Spawn(avoid *orb.Point) {
	network := c.ctx.Network()
	if network.NumRoads() == 0 {
		log.Warnf("%v: no roads to spawn on", c)
		return
	}
	rnd := c.ctx.Rand()
	id := int32(-1)
	if avoid != nil {
		roads := network.Roads()
		far := make([]int32, 0, len(roads))
		for i := range roads {
			if geometry.Distance(roads[i].First(), *avoid) > spawnExclusionRadius {
				far = append(far, roads[i].ID)
			}
		}
		if len(far) > 0 {
			id = far[rnd.Intn(len(far))]
		}
	}
	if id < 0 {
		id = int32(rnd.Intn(network.NumRoads()))
	}
	c.placeOn(network.Road(id))
	c.speed = c.params.MaxSpeed * c.params.SpawnSpeedRatio
	c.crashed = false
	c.reason = ReasonNone
	c.trail.Clear()
	c.trail.Push(c.pos)
	if c.onSpawn != nil {
		c.onSpawn(c)
	}
}

// reset 回到未出生状态（路网替换后使用，避免引用旧路网的路段）
func (c *Car) reset() {
	c.road = nil
	c.pointIndex = 0
	c.t = 0
	c.speed = 0
	c.crashed = false
	c.reason = ReasonNone
	c.trail.Clear()
}

// placeOn 将车辆置于路段起点
func (c *Car) placeOn(r *roadnet.Road) {
	c.road = r
	c.pointIndex = 0
	c.t = 0
	c.refreshPose()
}

// crash 进入坠毁状态
func (c *Car) crash(reason Reason) {
	c.crashed = true
	c.reason = reason
	c.speed = 0
	log.Debugf("step %d: %v crashed (%s) at %v", c.ctx.Clock().InternalStep, c, reason, c.pos)
	if c.onCrash != nil {
		c.onCrash(c, reason)
	}
}

// bracket 当前折线段的两个端点
func (c *Car) bracket() (orb.Point, orb.Point) {
	return c.road.Points[c.pointIndex], c.road.Points[c.pointIndex+1]
}

// refreshPose 根据pointIndex与t重新计算位置与朝向
func (c *Car) refreshPose() {
	a, b := c.bracket()
	c.pos = geometry.Blend(a, b, c.t)
	if a != b {
		c.heading = geometry.Bearing(a, b)
	}
}

// recordTrail 与上一个轨迹点距离足够远时记录当前位置，超出容量时淘汰最旧点
func (c *Car) recordTrail() {
	if last, ok := c.trail.Last(); ok && geometry.Distance(last, c.pos) <= trailMinSpacing {
		return
	}
	c.trail.Push(c.pos)
}

// getter

func (c *Car) ID() int32 {
	if c == nil {
		return -1
	}
	return c.id
}

func (c *Car) Role() Role             { return c.role }
func (c *Car) IsPlayer() bool         { return c.role == RolePlayer }
func (c *Car) IsBot() bool            { return c.role == RoleBot }
func (c *Car) Color() uint32          { return c.color }
func (c *Car) Road() *roadnet.Road    { return c.road }
func (c *Car) PointIndex() int        { return c.pointIndex }
func (c *Car) T() float64             { return c.t }
func (c *Car) Speed() float64         { return c.speed }
func (c *Car) Position() orb.Point    { return c.pos }
func (c *Car) Heading() float64       { return c.heading }
func (c *Car) Crashed() bool          { return c.crashed }
func (c *Car) Reason() Reason         { return c.reason }
func (c *Car) Params() config.Vehicle { return c.params }
func (c *Car) Spawned() bool          { return c.road != nil }

// Trail 轨迹点副本，从旧到新
func (c *Car) Trail() []orb.Point {
	return c.trail.Slice()
}

// TrailLen 轨迹点数量
func (c *Car) TrailLen() int {
	return c.trail.Len()
}

func (c *Car) String() string {
	return fmt.Sprintf("Car %d(%v)", c.id, c.role)
}
