package task

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/citychase-sim/entity/car"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 0, "心跳日志间隔帧数（0表示使用配置文件中的control.heartbeat_interval）")

	// ErrRunning 帧循环已在运行
	ErrRunning = errors.New("task: frame loop is already running")
)

// ControlSource 玩家控制来源
// 说明：每个被处理的帧调用一次，player为当前玩家车辆（只读）
type ControlSource interface {
	Control(player *car.Car) car.Control
}

// ControlFunc 函数形式的控制来源
type ControlFunc func(player *car.Car) car.Control

func (f ControlFunc) Control(player *car.Car) car.Control {
	return f(player)
}

// Cruise 无人值守的控制来源：持续加速，在路口尽量直行
type Cruise struct{}

func (Cruise) Control(player *car.Car) car.Control {
	if player == nil {
		return car.Control{Accelerate: true}
	}
	return car.Control{Accelerate: true, Steer: player.Heading()}
}

// Step 执行一帧
// 功能：准备阶段、更新阶段、时钟推进、心跳日志
func (ctx *Context) Step(ctl car.Control) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.step(ctl)
}

func (ctx *Context) step(ctl car.Control) {
	ctx.carManager.Prepare()
	ctx.carManager.Update(ctl)
	ctx.clock.Advance()
	log.Debugf("step %d complete", ctx.clock.InternalStep)

	if ctx.heartbeat > 0 && ctx.clock.InternalStep%ctx.heartbeat == 0 {
		s := ctx.carManager.Stats()
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) bots=%d spawns=%d crashes=%v",
			ctx.clock.InternalStep,
			hour, minute, second,
			s.BotCount, s.Spawns, s.Crashes,
		)
	}
}

// tick 墙钟驱动的一次尝试，距上一帧不足最小帧间隔时跳过
func (ctx *Context) tick(now time.Time, src ControlSource) (stepped, finished bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if !ctx.clock.Ready(now) {
		return false, false
	}
	ctx.step(src.Control(ctx.carManager.Player()))
	return true, ctx.clock.Finished()
}

// Run 运行帧循环
// 功能：按目标帧率处理帧，直到到达结束帧、parent被取消或调用Close
// 参数：parent-上层上下文，src-玩家控制来源
// 返回：到达结束帧时返回nil，被取消时返回context.Canceled等取消原因，已在运行时返回ErrRunning
// 算法说明：
// 1. 定时器以最小帧间隔的1/4频率唤醒，由时钟判断是否处理新的一帧
// 2. 落后时只处理一帧，不补帧
// 3. 退出时停止定时器，不留下任何待执行的回调
func (ctx *Context) Run(parent context.Context, src ControlSource) error {
	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	ctx.runMu.Lock()
	if ctx.cancel != nil {
		ctx.runMu.Unlock()
		cancel()
		return ErrRunning
	}
	ctx.cancel, ctx.done = cancel, done
	ctx.runMu.Unlock()
	defer func() {
		ctx.runMu.Lock()
		ctx.cancel, ctx.done = nil, nil
		ctx.runMu.Unlock()
		cancel()
		close(done)
	}()

	interval := max(ctx.clock.MinFrame()/4, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Infof("frame loop started (%v per frame)", ctx.clock.MinFrame())
	for {
		select {
		case <-runCtx.Done():
			log.Infof("frame loop stopped at step %d", ctx.clock.InternalStep)
			return runCtx.Err()
		case now := <-ticker.C:
			if _, finished := ctx.tick(now, src); finished {
				log.Infof("engine complete")
				return nil
			}
		}
	}
}
