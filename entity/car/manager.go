package car

import (
	"maps"

	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/entity"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/container"
)

const (
	playerColor uint32 = 0xffd400
)

// 自动驾驶车辆颜色表
var botPalette = []uint32{0xe6194b, 0x3cb44b, 0x4363d8, 0xf58231, 0x911eb4, 0x46f0f0, 0xf032e6, 0xbcf60c}

// Stats 车辆统计
type Stats struct {
	Crashes  map[Reason]int32 // 各原因的坠毁次数
	Spawns   int32            // 出生次数（含重生）
	Removed  int32            // 被移除的自动驾驶车辆数
	BotCount int              // 当前自动驾驶车辆数
}

// Manager 车辆管理器
// 功能：管理玩家与全部自动驾驶车辆，按固定顺序执行每帧的更新与碰撞检查
// 说明：自动驾驶车辆的增删通过增量数组在Prepare时生效
type Manager struct {
	ctx entity.ITaskContext

	player *Car
	bots   *container.IncrementalArray[*Car]
	nextID int32

	stats Stats
}

// NewManager 创建车辆管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:  ctx,
		bots: container.NewIncrementalArray[*Car](),
		stats: Stats{
			Crashes: make(map[Reason]int32),
		},
	}
}

// Init 创建玩家与numBots辆自动驾驶车辆并出生
// 说明：自动驾驶车辆出生时远离玩家
func (m *Manager) Init(numBots int) {
	m.player = m.newCar(RolePlayer, playerColor)
	m.player.Spawn(nil)
	for iter := 0; iter < numBots; iter++ {
		m.AddBot()
	}
	m.bots.Prepare()
	log.Infof("cars initialized: 1 player, %d bots", m.bots.Len())
}

func (m *Manager) newCar(role Role, color uint32) *Car {
	c := New(m.ctx, m.nextID, role, color)
	m.nextID++
	c.onCrash = func(_ *Car, reason Reason) {
		m.stats.Crashes[reason]++
	}
	c.onSpawn = func(_ *Car) {
		m.stats.Spawns++
	}
	return c
}

// AddBot 新增一辆自动驾驶车辆（立即出生，下一次Prepare后参与更新）
func (m *Manager) AddBot() *Car {
	c := m.newCar(RoleBot, botPalette[int(m.nextID)%len(botPalette)])
	c.Spawn(m.avoidPoint())
	m.bots.Add(c)
	return c
}

// RemoveBot 移除一辆自动驾驶车辆（下一次Prepare时生效）
// 说明：尚未生效的新增车辆不能移除，重复移除只生效一次
func (m *Manager) RemoveBot(c *Car) {
	if c == nil || !c.IsBot() {
		log.Panicf("remove non-bot car %v", c)
	}
	bots := m.bots.Data()
	if i := c.Index(); i >= len(bots) || bots[i] != c {
		log.Warnf("%v is not an active bot, ignore removal", c)
		return
	}
	if !c.removing {
		c.removing = true
		m.bots.Remove(c)
		m.stats.Removed++
	}
}

// RespawnPlayer 玩家重新出生
func (m *Manager) RespawnPlayer() {
	m.player.Spawn(nil)
}

// Restart 所有车辆重新出生（路网重载后使用）
// 说明：先应用待处理的增删，保证尚未生效的新增车辆也在新路网上出生；新路网为空时车辆保持未出生状态
func (m *Manager) Restart() {
	m.bots.Prepare()
	m.player.reset()
	m.player.Spawn(nil)
	for _, b := range m.bots.Data() {
		b.reset()
		b.Spawn(m.avoidPoint())
	}
}

// Prepare 准备阶段，应用自动驾驶车辆的增删
func (m *Manager) Prepare() {
	m.bots.Prepare()
}

// Update 更新阶段，每帧执行一次
// 算法说明：
// 1. 玩家按控制输入更新
// 2. 玩家作为主体与每辆自动驾驶车辆做碰撞检查
// 3. 每辆自动驾驶车辆以玩家和全部自动驾驶车辆为感知输入更新
// 4. 每辆自动驾驶车辆作为主体与其他自动驾驶车辆及玩家做碰撞检查
// 说明：每个有序车辆对每帧恰好检查一次
func (m *Manager) Update(ctl Control) {
	player := m.player
	bots := m.bots.Data()

	player.Update(Input{Control: ctl})
	for _, b := range bots {
		player.Collide(b, m.avoidPoint())
	}

	for _, b := range bots {
		b.Update(Input{Target: player, Bots: bots})
	}

	for _, b := range bots {
		for _, o := range bots {
			if o != b {
				b.Collide(o, m.avoidPoint())
			}
		}
		b.Collide(player, m.avoidPoint())
	}
}

// avoidPoint 自动驾驶车辆重生时需要远离的位置（玩家当前位置）
func (m *Manager) avoidPoint() *orb.Point {
	return livePosition(m.player)
}

// Player 玩家车辆
func (m *Manager) Player() *Car {
	return m.player
}

// Bots 当前生效的自动驾驶车辆（只读）
func (m *Manager) Bots() []*Car {
	return m.bots.Data()
}

// Stats 统计数据副本
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Crashes = maps.Clone(m.stats.Crashes)
	s.BotCount = m.bots.Len()
	return s
}
