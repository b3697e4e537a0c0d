package task

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/car"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
)

// gridFeatures 以(lon0, lat0)为西北角、step度为间距的n*n经纬度方格路网
func gridFeatures(lon0, lat0, step float64, n int) []roadnet.Feature {
	features := make([]roadnet.Feature, 0, 2*n)
	for i := 0; i < n; i++ {
		h, v := make(orb.LineString, 0, n), make(orb.LineString, 0, n)
		for j := 0; j < n; j++ {
			h = append(h, orb.Point{lon0 + float64(j)*step, lat0 - float64(i)*step})
			v = append(v, orb.Point{lon0 + float64(i)*step, lat0 - float64(j)*step})
		}
		features = append(features,
			roadnet.Feature{Name: "h", Coords: h},
			roadnet.Feature{Name: "v", Coords: v},
		)
	}
	return features
}

func newTask(t *testing.T, mutate ...func(*config.Config)) *Context {
	t.Helper()
	c := config.Default()
	c.Control.Bots = 4
	for _, f := range mutate {
		f(&c)
	}
	require.NoError(t, c.Validate())
	ctx := NewContext(c, gridFeatures(116.30, 39.95, 0.004, 5))
	ctx.Init()
	return ctx
}

func TestStep(t *testing.T) {
	ctx := newTask(t)
	for iter := 0; iter < 600; iter++ {
		ctx.Step(Cruise{}.Control(ctx.CarManager().Player()))
	}
	assert.Equal(t, int32(600), ctx.Clock().InternalStep)
	assert.InDelta(t, 10.0, ctx.Clock().T, 1e-9)

	s := ctx.Stats()
	assert.Equal(t, 4, s.BotCount)
	assert.GreaterOrEqual(t, s.Spawns, int32(5))

	ctx.View(func(player *car.Car, bots []*car.Car) {
		require.NotNil(t, player)
		assert.True(t, player.Spawned())
		assert.Len(t, bots, 4)
	})
}

func TestVisibleRoads(t *testing.T) {
	ctx := newTask(t)
	var pos orb.Point
	var road *roadnet.Road
	ctx.View(func(player *car.Car, _ []*car.Car) {
		pos, road = player.Position(), player.Road()
	})
	roads := ctx.VisibleRoads(pos, 100, 100)
	assert.Contains(t, roads, road)
	seen := make(map[int32]bool)
	for _, r := range roads {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}

	assert.Empty(t, ctx.VisibleRoads(orb.Point{1e6, 1e6}, 100, 100))
}

func TestReload(t *testing.T) {
	ctx := newTask(t)
	ctx.Reload(gridFeatures(2.35, 48.86, 0.002, 3))
	network := ctx.Network()
	assert.Equal(t, 12*2, network.NumRoads())
	ctx.View(func(player *car.Car, bots []*car.Car) {
		assert.Same(t, network.Road(player.Road().ID), player.Road())
		for _, b := range bots {
			assert.Same(t, network.Road(b.Road().ID), b.Road())
		}
	})
	for iter := 0; iter < 100; iter++ {
		ctx.Step(car.Control{Accelerate: true})
	}

	ctx.Reload(nil)
	ctx.View(func(player *car.Car, _ []*car.Car) {
		assert.False(t, player.Spawned())
	})
	ctx.Step(car.Control{Accelerate: true})
	assert.Empty(t, ctx.VisibleRoads(orb.Point{}, 1000, 1000))
}

func TestRunUntilTotal(t *testing.T) {
	ctx := newTask(t, func(c *config.Config) {
		c.Control.FPS = 500
		c.Control.Total = 20
	})
	calls := 0
	src := ControlFunc(func(player *car.Car) car.Control {
		calls++
		return Cruise{}.Control(player)
	})
	require.NoError(t, ctx.Run(context.Background(), src))
	assert.Equal(t, int32(20), ctx.Clock().InternalStep)
	assert.Equal(t, 20, calls)
}

func TestRunSkipsNotAccumulates(t *testing.T) {
	ctx := newTask(t, func(c *config.Config) {
		c.Control.FPS = 20
	})
	runCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := ctx.Run(runCtx, Cruise{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// 0.5秒内最多处理约10帧
	assert.LessOrEqual(t, ctx.Clock().InternalStep, int32(11))
	assert.Greater(t, ctx.Clock().InternalStep, int32(0))
}

func TestRunRevocable(t *testing.T) {
	ctx := newTask(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ctx.Run(context.Background(), Cruise{})
	}()
	require.Eventually(t, func() bool {
		return ctx.Stats().Spawns > 0 && ctx.running()
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, ctx.Run(context.Background(), Cruise{}), ErrRunning)

	ctx.Close()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("frame loop did not stop")
	}
	assert.False(t, ctx.running())

	// 停止后步数不再变化
	step := ctx.Clock().InternalStep
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, step, ctx.Clock().InternalStep)

	// 可以重新启动
	ctx.Close()
	runCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ctx.Run(runCtx, Cruise{}), context.DeadlineExceeded)
}

func TestCruise(t *testing.T) {
	assert.Equal(t, car.Control{Accelerate: true}, Cruise{}.Control(nil))
}
