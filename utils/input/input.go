package input

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tsinghua-fib-lab/citychase-sim/entity/roadnet"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoTimeout = 30 * time.Second // MongoDB连接与读取的总超时
)

// Init 下载数据
// 功能：根据配置加载原始道路线要素
// 参数：cfg-输入配置
// 返回：线要素列表与错误信息
// 算法说明：
// 1. 配置了File时从GeoJSON文件加载
// 2. 否则配置了URI时从MongoDB集合加载，每个文档是一个GeoJSON Feature
// 3. 都没有配置时返回错误
func Init(cfg config.Input) ([]roadnet.Feature, error) {
	switch {
	case cfg.File != "":
		return LoadFile(cfg.File)
	case cfg.URI != "":
		ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
		defer cancel()
		return LoadMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("input: neither file nor uri is specified")
	}
}

// LoadFile 从GeoJSON FeatureCollection文件加载线要素
func LoadFile(path string) ([]roadnet.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input: read %s: %w", path, err)
	}
	features, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("input: %s: %w", path, err)
	}
	log.Infof("loaded %d line features from %s", len(features), path)
	return features, nil
}

// Parse 解析GeoJSON FeatureCollection
func Parse(data []byte) ([]roadnet.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal feature collection: %w", err)
	}
	return Convert(fc.Features), nil
}

// LoadMongo 从MongoDB集合加载线要素
// 说明：文档以宽松扩展JSON导出后按GeoJSON Feature解析，_id字段不参与解析；无法解析的文档跳过并记录警告
func LoadMongo(ctx context.Context, cfg config.Input) ([]roadnet.Feature, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("input: connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(cfg.GetDb()).Collection(cfg.GetColl())
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("input: find %s.%s: %w", cfg.GetDb(), cfg.GetColl(), err)
	}
	defer cur.Close(ctx)

	raw := make([]*geojson.Feature, 0)
	for cur.Next(ctx) {
		data, err := bson.MarshalExtJSON(cur.Current, false, false)
		if err != nil {
			log.Warnf("skip document: %v", err)
			continue
		}
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			log.Warnf("skip document: %v", err)
			continue
		}
		raw = append(raw, f)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("input: iterate %s.%s: %w", cfg.GetDb(), cfg.GetColl(), err)
	}
	features := Convert(raw)
	log.Infof("loaded %d line features from %s.%s", len(features), cfg.GetDb(), cfg.GetColl())
	return features, nil
}

// Convert GeoJSON要素->道路线要素
// 功能：保留LineString与MultiLineString几何，其他几何类型跳过
// 说明：MultiLineString的每一段都成为独立的线要素，共享name与ref属性
func Convert(raw []*geojson.Feature) []roadnet.Feature {
	features := make([]roadnet.Feature, 0, len(raw))
	for _, f := range raw {
		if f == nil || f.Geometry == nil {
			continue
		}
		name := f.Properties.MustString("name", "")
		ref := f.Properties.MustString("ref", "")
		switch g := f.Geometry.(type) {
		case orb.LineString:
			features = append(features, roadnet.Feature{Name: name, Ref: ref, Coords: g})
		case orb.MultiLineString:
			for _, ls := range g {
				features = append(features, roadnet.Feature{Name: name, Ref: ref, Coords: ls})
			}
		default:
			log.Debugf("skip %s geometry (name=%q)", g.GeoJSONType(), name)
		}
	}
	return features
}
