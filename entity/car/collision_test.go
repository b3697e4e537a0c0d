package car

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/geometry"
)

// spawnAt 出生后把车辆挪到指定位置，轨迹只保留该位置
func spawnAt(t *testing.T, ctx *testContext, id int32, role Role, p orb.Point) *Car {
	t.Helper()
	c := New(ctx, id, role, 0)
	c.Spawn(nil)
	require.True(t, c.Spawned())
	c.pos = p
	c.trail.Clear()
	c.trail.Push(p)
	return c
}

func TestCollideGuards(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	a := spawnAt(t, ctx, 0, RoleBot, orb.Point{0, 0})
	ghost := New(ctx, 1, RoleBot, 0)

	assert.False(t, a.Collide(nil, nil))
	assert.False(t, a.Collide(a, nil))
	assert.False(t, a.Collide(ghost, nil))
	assert.False(t, ghost.Collide(a, nil))
	assert.False(t, a.Crashed())
}

func TestHeadOnPlayerAndBot(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	player := spawnAt(t, ctx, 0, RolePlayer, orb.Point{0, 0})
	bot := spawnAt(t, ctx, 1, RoleBot, orb.Point{9, 0})

	assert.True(t, bot.Collide(player, nil))
	assert.True(t, player.Crashed())
	assert.True(t, bot.Crashed())
	assert.Equal(t, ReasonHeadOn, player.Reason())
	assert.Equal(t, ReasonHeadOn, bot.Reason())
	assert.Equal(t, 0.0, bot.Speed())

	// 双方都已坠毁，不会再次计数
	assert.False(t, player.Collide(bot, nil))
}

func TestHeadOnThreshold(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	player := spawnAt(t, ctx, 0, RolePlayer, orb.Point{0, 0})
	bot := spawnAt(t, ctx, 1, RoleBot, orb.Point{10, 0})
	assert.False(t, player.Collide(bot, nil))
	assert.False(t, player.Crashed())
	assert.False(t, bot.Crashed())
}

func TestHeadOnTwoBotsRespawn(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	a := spawnAt(t, ctx, 0, RoleBot, orb.Point{0, 0})
	b := spawnAt(t, ctx, 1, RoleBot, orb.Point{0, 0})
	var crashes []Reason
	spawns := 0
	for _, c := range []*Car{a, b} {
		c.onCrash = func(_ *Car, r Reason) { crashes = append(crashes, r) }
		c.onSpawn = func(*Car) { spawns++ }
	}

	avoid := orb.Point{1000, 0}
	assert.True(t, a.Collide(b, &avoid))
	assert.Equal(t, []Reason{ReasonHeadOn, ReasonHeadOn}, crashes)
	assert.Equal(t, 2, spawns)
	for _, c := range []*Car{a, b} {
		assert.False(t, c.Crashed())
		assert.Equal(t, 1, c.TrailLen())
		assert.Greater(t, geometry.Distance(c.Position(), avoid), spawnExclusionRadius)
	}
}

func TestTraceBotHitsPlayerTrail(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	player := spawnAt(t, ctx, 0, RolePlayer, orb.Point{500, 0})
	player.trail.Clear()
	player.trail.Push(orb.Point{100, 0})
	player.trail.Push(orb.Point{200, 0})
	bot := spawnAt(t, ctx, 1, RoleBot, orb.Point{203, 4})

	assert.True(t, bot.Collide(player, nil))
	assert.True(t, bot.Crashed())
	assert.Equal(t, ReasonTrace, bot.Reason())
	assert.False(t, player.Crashed())
	// 撞上玩家轨迹的车辆保持坠毁
	assert.Equal(t, orb.Point{203, 4}, bot.Position())
}

func TestTraceNeedsTwoPoints(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	player := spawnAt(t, ctx, 0, RolePlayer, orb.Point{500, 0})
	player.trail.Clear()
	player.trail.Push(orb.Point{200, 0})
	bot := spawnAt(t, ctx, 1, RoleBot, orb.Point{200, 0})
	assert.False(t, bot.Collide(player, nil))
	assert.False(t, bot.Crashed())

	player.trail.Push(orb.Point{300, 0})
	assert.True(t, bot.Collide(player, nil))
}

func TestTraceThreshold(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	player := spawnAt(t, ctx, 0, RolePlayer, orb.Point{500, 0})
	player.trail.Push(orb.Point{200, 0})
	bot := spawnAt(t, ctx, 1, RoleBot, orb.Point{200, 6})
	assert.False(t, bot.Collide(player, nil))
	bot.pos = orb.Point{200, 5.9}
	assert.True(t, bot.Collide(player, nil))
}

func TestTraceBotHitsBotTrail(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	owner := spawnAt(t, ctx, 0, RoleBot, orb.Point{500, 0})
	owner.trail.Push(orb.Point{300, 0})
	victim := spawnAt(t, ctx, 1, RoleBot, orb.Point{302, 0})
	respawned := false
	victim.onSpawn = func(*Car) { respawned = true }

	assert.True(t, victim.Collide(owner, nil))
	assert.True(t, respawned)
	assert.False(t, victim.Crashed())
	assert.False(t, owner.Crashed())
}

func TestTracePlayerHitsBotTrail(t *testing.T) {
	ctx := newTestContext(crossNetwork())
	bot := spawnAt(t, ctx, 0, RoleBot, orb.Point{500, 0})
	bot.trail.Push(orb.Point{300, 0})
	player := spawnAt(t, ctx, 1, RolePlayer, orb.Point{300, 1})

	assert.True(t, player.Collide(bot, nil))
	assert.True(t, player.Crashed())
	assert.Equal(t, ReasonTrace, player.Reason())
	assert.False(t, bot.Crashed())

	// 已坠毁的车辆不再做轨迹检查
	assert.False(t, player.Collide(bot, nil))
}
