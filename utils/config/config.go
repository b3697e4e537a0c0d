package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"
)

// Default 默认配置
// 功能：返回所有参数都已填充默认值的配置，YAML文件只需覆盖需要修改的字段
func Default() Config {
	return Config{
		Control: Control{
			FPS:               60,
			Seed:              1,
			Bots:              12,
			HeartbeatInterval: 600,
		},
		Map: Map{
			GridCellSize: 2000,
		},
		Player: Vehicle{
			MaxSpeed:     35,
			Acceleration: 0.3,
			Braking:      0.6,
			Friction:     0.96,
			TrailLength:  400,
		},
		Bot: Vehicle{
			MaxSpeed:        28,
			Acceleration:    0.3,
			Braking:         0.6,
			Friction:        0.96,
			SpawnSpeedRatio: 0.5,
			TrailLength:     120,
		},
		Collision: Collision{
			HeadOnDistance: 10,
			TraceDistance:  6,
		},
		AI: AI{
			DetectionRadius:  300,
			AttractionWeight: 10,
			RepulsionWeight:  50,
		},
	}
}

// Load 从YAML数据加载配置
// 功能：在默认配置之上严格解析YAML（未知字段报错）并校验
// 参数：data-YAML文件内容
// 返回：配置与错误信息
func Load(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate 检查配置取值范围
func (c Config) Validate() error {
	if c.Control.FPS <= 0 {
		return fmt.Errorf("config: control.fps must be positive, got %v", c.Control.FPS)
	}
	if c.Control.Bots < 0 {
		return fmt.Errorf("config: control.bots must not be negative, got %d", c.Control.Bots)
	}
	if c.Map.GridCellSize <= 0 {
		return fmt.Errorf("config: map.grid_cell_size must be positive, got %v", c.Map.GridCellSize)
	}
	for name, v := range map[string]Vehicle{"player": c.Player, "bot": c.Bot} {
		if v.MaxSpeed <= 0 {
			return fmt.Errorf("config: %s.max_speed must be positive, got %v", name, v.MaxSpeed)
		}
		if v.Friction <= 0 || v.Friction > 1 {
			return fmt.Errorf("config: %s.friction must be in (0, 1], got %v", name, v.Friction)
		}
		if v.Acceleration < 0 || v.Braking < 0 {
			return fmt.Errorf("config: %s.acceleration and braking must not be negative", name)
		}
		if v.SpawnSpeedRatio < 0 || v.SpawnSpeedRatio > 1 {
			return fmt.Errorf("config: %s.spawn_speed_ratio must be in [0, 1], got %v", name, v.SpawnSpeedRatio)
		}
		if v.TrailLength < 1 {
			return fmt.Errorf("config: %s.trail_length must be at least 1, got %d", name, v.TrailLength)
		}
	}
	if c.Collision.TraceDistance > c.Collision.HeadOnDistance {
		return fmt.Errorf("config: collision.trace_distance (%v) must not exceed head_on_distance (%v)",
			c.Collision.TraceDistance, c.Collision.HeadOnDistance)
	}
	return nil
}

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，包含由帧率换算出的帧间隔
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	FrameInterval time.Duration // 最小帧间隔
}

// NewRuntimeConfig 根据配置初始化运行时配置
func NewRuntimeConfig(config Config) *RuntimeConfig {
	return &RuntimeConfig{
		All:           config,
		C:             config.Control,
		FrameInterval: time.Duration(float64(time.Second) / config.Control.FPS),
	}
}
