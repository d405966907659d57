package plateau

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ecopia-map/cesium_streamer/internal/fetch"
)

// Dataset is one published 3D city model
type Dataset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Pref     string `json:"pref"`
	PrefCode string `json:"pref_code"`
	City     string `json:"city"`
	CityCode string `json:"city_code"`
	Ward     string `json:"ward"`
	WardCode string `json:"ward_code"`
	Type     string `json:"type"`
	TypeEn   string `json:"type_en"`
	URL      string `json:"url"`
	Year     int    `json:"year"`
	Format   string `json:"format"`
	Lod      string `json:"lod"`
	Texture  bool   `json:"texture"`
}

type Catalog struct {
	Datasets []Dataset `json:"datasets"`
}

// Query selects datasets. Empty fields match everything.
type Query struct {
	Prefecture string
	City       string
	Type       string
	Format     string
	Lod        string
	Texture    *bool
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse dataset catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalog fetches and parses the catalog at url
func LoadCatalog(ctx context.Context, fetcher fetch.Fetcher, url string) (*Catalog, error) {
	data, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// Filter returns the datasets matching q, in catalog order. Prefecture and city match either the
// name or the code, type matches either the Japanese or English name.
func (c *Catalog) Filter(q Query) []Dataset {
	var out []Dataset
	for _, d := range c.Datasets {
		if q.Prefecture != "" && q.Prefecture != d.Pref && q.Prefecture != d.PrefCode {
			continue
		}
		if q.City != "" && q.City != d.City && q.City != d.CityCode && q.City != d.Ward && q.City != d.WardCode {
			continue
		}
		if q.Type != "" && q.Type != d.Type && !strings.EqualFold(q.Type, d.TypeEn) {
			continue
		}
		if q.Format != "" && !strings.EqualFold(q.Format, d.Format) {
			continue
		}
		if q.Lod != "" && q.Lod != d.Lod {
			continue
		}
		if q.Texture != nil && *q.Texture != d.Texture {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Prefectures lists the distinct prefectures ordered by prefecture code
func (c *Catalog) Prefectures() []string {
	codes := make(map[string]string)
	for _, d := range c.Datasets {
		if _, ok := codes[d.Pref]; !ok {
			codes[d.Pref] = d.PrefCode
		}
	}

	prefs := make([]string, 0, len(codes))
	for p := range codes {
		prefs = append(prefs, p)
	}
	sort.Slice(prefs, func(i, j int) bool {
		if codes[prefs[i]] != codes[prefs[j]] {
			return codes[prefs[i]] < codes[prefs[j]]
		}
		return prefs[i] < prefs[j]
	})
	return prefs
}
