// 随机数引擎，包装了golang.org/x/exp/rand，提供出生点选择与路口加权决策所需的随机方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成，相同种子得到相同的仿真过程
// 说明：模拟循环是单线程的，因此不提供线程安全版本
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子（会叠加-rand.seed_offset）
// 返回：随机数引擎指针
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// DiscreteDistribution 按给定权重生成随机下标
// 功能：根据权重数组生成离散分布的随机数
// 参数：weight-权重数组，元素必须非负且总和为正
// 返回：随机生成的下标（0到len(weight)-1），weight为空时返回-1
// 算法说明：
// 1. 在[0, 总权重)范围内抽取一个随机数
// 2. 依次减去每个候选的权重，余量首次不大于0时选中该候选
// 3. 浮点误差导致未选中时返回最后一个正权重的下标
func (e *Engine) DiscreteDistribution(weight []float64) int {
	total := .0
	for _, w := range weight {
		total += w
	}
	if len(weight) == 0 {
		return -1
	}
	remain := total * e.Float64()
	last := 0
	for i, w := range weight {
		if w <= 0 {
			continue
		}
		last = i
		remain -= w
		if remain <= 0 {
			return i
		}
	}
	return last
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}
