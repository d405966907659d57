package pkg

import (
	"context"
	"fmt"
	goio "io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ecopia-map/cesium_streamer/internal/plateau"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
)

// Datasets lists the catalog entries matching the options. Without any filter the prefectures
// present in the catalog are listed instead.
func (s *Streamer) Datasets(ctx context.Context, opts *tiler.StreamerCatalogOptions, w goio.Writer) error {
	catalogURL, err := RootURL(opts.Catalog)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	catalog, err := plateau.LoadCatalog(ctx, s.algorithmManager.GetFetcherAlgorithm(), catalogURL)
	if err != nil {
		return err
	}

	query, err := catalogQuery(opts)
	if err != nil {
		return err
	}
	if query == (plateau.Query{}) {
		for _, pref := range catalog.Prefectures() {
			fmt.Fprintln(w, pref)
		}
		return nil
	}

	matches := catalog.Filter(query)
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tPREF\tCITY\tTYPE\tLOD\tTEXTURE\tFORMAT\tURL")
	for _, d := range matches {
		city := d.City
		if d.Ward != "" {
			city += " " + d.Ward
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%t\t%s\t%s\n", d.ID, d.Pref, city, d.TypeEn, d.Lod, d.Texture, d.Format, d.URL)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d datasets\n", len(matches))
	return nil
}

func catalogQuery(opts *tiler.StreamerCatalogOptions) (plateau.Query, error) {
	query := plateau.Query{
		Prefecture: strings.TrimSpace(opts.Prefecture),
		City:       strings.TrimSpace(opts.City),
		Type:       strings.TrimSpace(opts.Type),
		Format:     strings.TrimSpace(opts.Format),
		Lod:        strings.TrimSpace(opts.Lod),
	}
	if texture := strings.TrimSpace(opts.Texture); texture != "" {
		v, err := strconv.ParseBool(texture)
		if err != nil {
			return plateau.Query{}, fmt.Errorf("texture: %w", err)
		}
		query.Texture = &v
	}
	return query, nil
}
