package config

// Input 指定原始道路线要素来源的配置（GeoJSON文件、MongoDB）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：File优先级高于MongoDB
type Input struct {
	File string `yaml:"file,omitempty"` // GeoJSON文件路径
	URI  string `yaml:"uri,omitempty"`  // MongoDB连接字符串
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
}

// GetDb 获取数据库名
func (p Input) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p Input) GetColl() string {
	return p.Col
}

// Control 模拟器控制配置
// 功能：定义帧循环与实体数量等核心控制参数
type Control struct {
	FPS               float64 `yaml:"fps"`                // 目标帧率
	Total             int32   `yaml:"total"`              // 总帧数，0表示不限
	Seed              uint64  `yaml:"seed"`               // 随机数种子
	Bots              int     `yaml:"bots"`               // 自动驾驶车辆数
	HeartbeatInterval int32   `yaml:"heartbeat_interval"` // 心跳日志间隔帧数
}

// Vehicle 车辆动力学参数
// 说明：速度单位为平面坐标单位/帧
type Vehicle struct {
	MaxSpeed        float64 `yaml:"max_speed"`         // 速度上限（截断值，不是巡航速度：持续加速的稳态速度为 acceleration*friction/(1-friction)）
	Acceleration    float64 `yaml:"acceleration"`      // 每帧加速量
	Braking         float64 `yaml:"braking"`           // 每帧刹车量
	Friction        float64 `yaml:"friction"`          // 每帧速度衰减系数
	SpawnSpeedRatio float64 `yaml:"spawn_speed_ratio"` // 出生时速度占最大速度的比例
	TrailLength     int     `yaml:"trail_length"`      // 轨迹最大点数
}

// Collision 碰撞判定距离
type Collision struct {
	HeadOnDistance float64 `yaml:"head_on_distance"` // 车身相撞距离
	TraceDistance  float64 `yaml:"trace_distance"`   // 撞上轨迹的距离
}

// AI 自动驾驶车辆在路口的决策参数
type AI struct {
	DetectionRadius  float64 `yaml:"detection_radius"`  // 感知其他车辆的半径
	AttractionWeight float64 `yaml:"attraction_weight"` // 朝向玩家的权重系数
	RepulsionWeight  float64 `yaml:"repulsion_weight"`  // 远离邻近车辆的权重系数
}

// Map 路网构建参数
type Map struct {
	GridCellSize float64 `yaml:"grid_cell_size"` // 空间索引网格边长
}

// Config YAML配置文件的根结构
type Config struct {
	Input     Input     `yaml:"input"`
	Control   Control   `yaml:"control"`
	Map       Map       `yaml:"map"`
	Player    Vehicle   `yaml:"player"`
	Bot       Vehicle   `yaml:"bot"`
	Collision Collision `yaml:"collision"`
	AI        AI        `yaml:"ai"`
}
