package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/citychase-sim/utils/config"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Main Street", "ref": "A1"},
     "geometry": {"type": "LineString", "coordinates": [[116.30, 39.90], [116.31, 39.90]]}},
    {"type": "Feature", "properties": {"name": "Ring"},
     "geometry": {"type": "MultiLineString", "coordinates": [
       [[116.30, 39.91], [116.31, 39.91]],
       [[116.31, 39.91], [116.31, 39.92], [116.32, 39.92]]]}},
    {"type": "Feature", "properties": {"name": "Station"},
     "geometry": {"type": "Point", "coordinates": [116.30, 39.90]}},
    {"type": "Feature", "properties": null,
     "geometry": {"type": "LineString", "coordinates": [[116.32, 39.92], [116.33, 39.93]]}}
  ]
}`

func TestParse(t *testing.T) {
	features, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, features, 4)

	assert.Equal(t, "Main Street", features[0].Name)
	assert.Equal(t, "A1", features[0].Ref)
	assert.Equal(t, orb.LineString{{116.30, 39.90}, {116.31, 39.90}}, features[0].Coords)

	assert.Equal(t, "Ring", features[1].Name)
	assert.Equal(t, "Ring", features[2].Name)
	assert.Len(t, features[2].Coords, 3)
	assert.Empty(t, features[1].Ref)

	assert.Empty(t, features[3].Name)
	assert.Len(t, features[3].Coords, 2)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roads.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	features, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, features, 4)

	features, err = Init(config.Input{File: path, URI: "mongodb://unused"})
	require.NoError(t, err)
	assert.Len(t, features, 4)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}

func TestInitWithoutSource(t *testing.T) {
	_, err := Init(config.Input{})
	assert.Error(t, err)
}
