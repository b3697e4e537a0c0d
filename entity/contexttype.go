package entity

import (
	"github.com/tsinghua-fib-lab/citychase-sim/clock"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/randengine"
)

// ITaskContext 仿真任务上下文的依赖倒置
// 说明：车辆通过它访问路网、配置与随机数引擎，不直接依赖task包
type ITaskContext interface {
	Clock() *clock.Clock
	Network() IRoadNetwork
	RuntimeConfig() *config.RuntimeConfig
	Rand() *randengine.Engine
}
