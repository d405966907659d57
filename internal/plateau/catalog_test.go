package plateau

import (
	"context"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{"datasets": [
	{"id": "a", "name": "Shibuya bldg", "pref": "東京都", "pref_code": "13", "city": "渋谷区", "city_code": "13113",
	 "type": "建築物モデル", "type_en": "bldg", "url": "https://assets.example/13113/bldg/tileset.json",
	 "year": 2023, "format": "3D Tiles", "lod": "2", "texture": true},
	{"id": "b", "name": "Shibuya bldg lod1", "pref": "東京都", "pref_code": "13", "city": "渋谷区", "city_code": "13113",
	 "type": "建築物モデル", "type_en": "bldg", "url": "https://assets.example/13113/bldg1/tileset.json",
	 "year": 2023, "format": "3D Tiles", "lod": "1", "texture": false},
	{"id": "c", "name": "Sapporo tran", "pref": "北海道", "pref_code": "01", "city": "札幌市", "city_code": "01100",
	 "ward": "中央区", "ward_code": "01101", "type": "道路モデル", "type_en": "tran",
	 "url": "https://assets.example/01100/tran.mvt", "year": 2022, "format": "MVT", "lod": "1", "texture": false}
]}`

func TestFilter(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Datasets, 3)

	ids := func(ds []Dataset) []string {
		var out []string
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	textured := true
	assert.Equal(t, []string{"a", "b", "c"}, ids(catalog.Filter(Query{})))
	assert.Equal(t, []string{"a", "b"}, ids(catalog.Filter(Query{Prefecture: "13"})))
	assert.Equal(t, []string{"a", "b"}, ids(catalog.Filter(Query{City: "渋谷区", Type: "BLDG"})))
	assert.Equal(t, []string{"a"}, ids(catalog.Filter(Query{Texture: &textured})))
	assert.Equal(t, []string{"b"}, ids(catalog.Filter(Query{Lod: "1", Format: "3d tiles"})))
	assert.Equal(t, []string{"c"}, ids(catalog.Filter(Query{City: "01101"})))
	assert.Empty(t, catalog.Filter(Query{Prefecture: "27"}))
}

func TestPrefectures(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, []string{"北海道", "東京都"}, catalog.Prefectures())
}

func TestLoadCatalog(t *testing.T) {
	fetcher := fetch.NewMapFetcher(map[string][]byte{
		"https://catalog.example/datasets.json": []byte(sampleCatalog),
		"https://catalog.example/broken.json":   []byte(`{"datasets": [`),
	})
	ctx := context.Background()

	catalog, err := LoadCatalog(ctx, fetcher, "https://catalog.example/datasets.json")
	require.NoError(t, err)
	assert.Len(t, catalog.Datasets, 3)

	_, err = LoadCatalog(ctx, fetcher, "https://catalog.example/broken.json")
	assert.Error(t, err)

	_, err = LoadCatalog(ctx, fetcher, "https://catalog.example/missing.json")
	var transportErr *fetch.TransportError
	assert.ErrorAs(t, err, &transportErr)
}
