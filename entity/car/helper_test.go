package car

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tsinghua-fib-lab/citychase-sim/clock"
	"github.com/tsinghua-fib-lab/citychase-sim/entity"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/randengine"
)

type testContext struct {
	clock   *clock.Clock
	network entity.IRoadNetwork
	rc      *config.RuntimeConfig
	rng     *randengine.Engine
}

func (c *testContext) Clock() *clock.Clock                  { return c.clock }
func (c *testContext) Network() entity.IRoadNetwork         { return c.network }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.rc }
func (c *testContext) Rand() *randengine.Engine             { return c.rng }

func newTestContext(network entity.IRoadNetwork, mutate ...func(*config.Config)) *testContext {
	c := config.Default()
	for _, f := range mutate {
		f(&c)
	}
	return &testContext{
		clock:   clock.New(c.Control),
		network: network,
		rc:      config.NewRuntimeConfig(c),
		rng:     randengine.New(c.Control.Seed),
	}
}

// meters 用平面米坐标构造线要素
func meters(name string, xy ...float64) roadnet.Feature {
	ls := make(orb.LineString, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		ls = append(ls, orb.Point{xy[i] / roadnet.MetersPerDegree, -xy[i+1] / roadnet.MetersPerDegree})
	}
	return roadnet.Feature{Name: name, Coords: ls}
}

// crossNetwork 以原点为中心的十字路口，四个方向各延伸1000
func crossNetwork() *roadnet.Network {
	return roadnet.Build([]roadnet.Feature{
		meters("ew", -1000, 0, 0, 0, 1000, 0),
		meters("ns", 0, -1000, 0, 0, 0, 1000),
	}, 0)
}

// streetNetwork n*n方格路网
func streetNetwork(n int, step float64) *roadnet.Network {
	features := make([]roadnet.Feature, 0, 2*n)
	for i := 0; i < n; i++ {
		h, v := make([]float64, 0, 2*n), make([]float64, 0, 2*n)
		for j := 0; j < n; j++ {
			h = append(h, float64(j)*step, float64(i)*step)
			v = append(v, float64(i)*step, float64(j)*step)
		}
		features = append(features, meters("h", h...), meters("v", v...))
	}
	return roadnet.Build(features, 0)
}

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-6 && math.Abs(a[1]-b[1]) < 1e-6
}

// findRoad 按首尾点查找路段
func findRoad(n entity.IRoadNetwork, from, to orb.Point) *roadnet.Road {
	for i := range n.Roads() {
		r := &n.Roads()[i]
		if near(r.First(), from) && near(r.Last(), to) {
			return r
		}
	}
	return nil
}

// fakeNetwork 手工构造的路网，用于构造单向断头路
type fakeNetwork struct {
	roads []roadnet.Road
	nodes []roadnet.Node
}

func (f *fakeNetwork) Road(id int32) *roadnet.Road          { return &f.roads[id] }
func (f *fakeNetwork) Node(id int32) *roadnet.Node          { return &f.nodes[id] }
func (f *fakeNetwork) NumRoads() int                        { return len(f.roads) }
func (f *fakeNetwork) Roads() []roadnet.Road                { return f.roads }
func (f *fakeNetwork) RangeQuery(orb.Bound) []*roadnet.Road { return nil }
func (f *fakeNetwork) NearestRoad(orb.Point) *roadnet.Road  { return nil }

// deadEndNetwork 一条从(0,0)到(100,0)的单向路段，终点没有出边
func deadEndNetwork() *fakeNetwork {
	return &fakeNetwork{
		roads: []roadnet.Road{{
			ID:      0,
			Points:  orb.LineString{{0, 0}, {100, 0}},
			Start:   0,
			End:     1,
			Reverse: roadnet.NoReverse,
			Length:  100,
		}},
		nodes: []roadnet.Node{
			{ID: 0, Pos: orb.Point{0, 0}, Out: []int32{0}},
			{ID: 1, Pos: orb.Point{100, 0}},
		},
	}
}
