package clock

import (
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
)

// Clock 帧时钟
// 功能：管理固定步长的帧推进，墙钟间隔不足最小帧时间的更新被跳过而不是累积
// 说明：每帧只做一次更新，不做物理子步
type Clock struct {
	DT       float64 // 每帧对应的仿真时间（秒）
	END_STEP int32   // 结束帧，0表示不限

	T            float64 // 当前仿真时间（秒）
	InternalStep int32   // 当前帧数

	minFrame  time.Duration // 最小帧间隔（墙钟）
	lastFrame time.Time     // 上一次被处理的帧的墙钟时间
}

// New 根据配置创建新的时钟实例
// 参数：c-控制配置，包含帧率与总帧数
// 返回：初始化完成的时钟实例
func New(c config.Control) *Clock {
	clk := &Clock{
		DT:       1 / c.FPS,
		END_STEP: c.Total,
		minFrame: time.Duration(float64(time.Second) / c.FPS),
	}
	clk.Init()
	return clk
}

// Init 重置时钟状态
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
	c.lastFrame = time.Time{}
}

// Ready 判断当前墙钟时刻是否应当处理新的一帧
// 功能：距上一次处理的帧不足最小帧间隔时返回false（跳过）；否则记录本次时刻并返回true
// 说明：落后时也只处理一帧，不补帧
func (c *Clock) Ready(now time.Time) bool {
	if !c.lastFrame.IsZero() && now.Sub(c.lastFrame) < c.minFrame {
		return false
	}
	c.lastFrame = now
	return true
}

// Advance 帧数+1并更新仿真时间
func (c *Clock) Advance() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Finished 是否已到达结束帧
func (c *Clock) Finished() bool {
	return c.END_STEP > 0 && c.InternalStep >= c.END_STEP
}

// MinFrame 最小帧间隔
func (c *Clock) MinFrame() time.Duration {
	return c.minFrame
}

// String 获取时钟的字符串表示（HH:MM:SS）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
