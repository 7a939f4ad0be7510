package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// GeoJSON renders the aggregation result as a FeatureCollection: one point
// feature per resolved location, with count and capital sum as properties.
// Unresolved groups were already dropped upstream.
func GeoJSON(res *Result) ([]byte, error) {
	if res == nil {
		return nil, eris.New("geo: nil result")
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(res.Points))}
	for _, p := range res.Points {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.Key,
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(4326),
			Properties: map[string]any{
				"key":           p.Key,
				"count":         p.Count,
				"capital_total": p.CapitalTotal,
			},
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode geojson")
	}
	return data, nil
}
