package task

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/clock"
	"github.com/tsinghua-fib-lab/citychase-sim/entity"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/car"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/randengine"
)

const (
	visibleMargin = 200.0 // 可见区域查询在视口四周额外扩展的距离
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态（时钟、路网、车辆、随机数、配置）
// 说明：帧更新、路网重载与渲染读取通过mu互斥，保证渲染看到的是完整的一帧
type Context struct {
	mu sync.Mutex

	// 时钟
	clock *clock.Clock
	// 路网（只在Reload时整体替换）
	network *roadnet.Network
	// 车辆管理器
	carManager *car.Manager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 随机数引擎
	rng *randengine.Engine
	// 心跳日志间隔帧数
	heartbeat int32

	// 运行中的帧循环，nil表示未运行
	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewContext 创建新的仿真任务上下文
// 功能：根据配置与原始线要素构建路网并创建各个组件
// 参数：c-配置对象，features-原始道路线要素
// 返回：创建完成的Context实例（需调用Init后才能运行）
func NewContext(c config.Config, features []roadnet.Feature) *Context {
	ctx := &Context{
		clock:         clock.New(c.Control),
		runtimeConfig: config.NewRuntimeConfig(c),
		rng:           randengine.New(c.Control.Seed),
		heartbeat:     c.Control.HeartbeatInterval,
	}
	if *heartBeatInterval > 0 {
		ctx.heartbeat = int32(*heartBeatInterval)
	}
	ctx.network = roadnet.Build(features, c.Map.GridCellSize)
	ctx.carManager = car.NewManager(ctx)
	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Network() entity.IRoadNetwork {
	return ctx.network
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Rand() *randengine.Engine {
	return ctx.rng
}

// CarManager 车辆管理器
// 说明：不加帧互斥，只能在帧循环未运行时使用；运行期间读取车辆请使用View，统计请使用Stats
func (ctx *Context) CarManager() *car.Manager {
	return ctx.carManager
}

// Init 重置时钟并创建玩家与自动驾驶车辆
func (ctx *Context) Init() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.clock.Init()
	log.Infof("Node: %v", ctx.network.NumNodes())
	log.Infof("Road: %v", ctx.network.NumRoads())
	ctx.carManager.Init(ctx.runtimeConfig.C.Bots)
}

// Reload 替换路网
// 功能：用新的线要素重新构建路网，所有车辆在新路网上重新出生
// 说明：旧路网整体丢弃；新路网为空时车辆保持未出生状态
func (ctx *Context) Reload(features []roadnet.Feature) {
	network := roadnet.Build(features, ctx.runtimeConfig.All.Map.GridCellSize)
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.network = network
	ctx.carManager.Restart()
	log.Infof("network reloaded: %d nodes, %d roads", network.NumNodes(), network.NumRoads())
}

// View 在帧互斥下读取车辆状态
// 参数：fn-读取回调，不得保存car指针到回调之外使用
func (ctx *Context) View(fn func(player *car.Car, bots []*car.Car)) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	fn(ctx.carManager.Player(), ctx.carManager.Bots())
}

// VisibleRoads 可见区域内的路段
// 功能：以center为中心、halfWidth/halfHeight为半宽高的视口向四周扩展visibleMargin后做范围查询
// 返回：去重后的路段列表
func (ctx *Context) VisibleRoads(center orb.Point, halfWidth, halfHeight float64) []*roadnet.Road {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	b := orb.Bound{
		Min: orb.Point{center[0] - halfWidth - visibleMargin, center[1] - halfHeight - visibleMargin},
		Max: orb.Point{center[0] + halfWidth + visibleMargin, center[1] + halfHeight + visibleMargin},
	}
	return ctx.network.RangeQuery(b)
}

// RespawnPlayer 玩家重新出生
func (ctx *Context) RespawnPlayer() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.carManager.RespawnPlayer()
}

// Stats 车辆统计
func (ctx *Context) Stats() car.Stats {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.carManager.Stats()
}

// running 帧循环是否在运行
func (ctx *Context) running() bool {
	ctx.runMu.Lock()
	defer ctx.runMu.Unlock()
	return ctx.cancel != nil
}

// Close 停止帧循环（若在运行）并等待其退出
func (ctx *Context) Close() {
	ctx.runMu.Lock()
	cancel, done := ctx.cancel, ctx.done
	ctx.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
