package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Response is a dataset with its provenance, as stored in the cache and served.
type Response struct {
	Dataset  Dataset
	Metadata Metadata
}

// ResponseOptions carries the provenance needed to describe a dataset.
type ResponseOptions struct {
	SourceURL    string
	UpstreamHost string // host that marks a SourceURL as MRMS
	GeneratedAt  time.Time
	TTL          time.Duration
}

// NewResponse validates the dataset and attaches metadata to it.
func NewResponse(ds Dataset, opts ResponseOptions) (Response, error) {
	if ds.Kind != KindGrid && ds.Kind != KindRandom {
		return Response{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedDataset, ds.Kind)
	}
	for i, p := range ds.Points {
		if math.IsNaN(p.Reflectivity) || p.Reflectivity < MinReflectivity || p.Reflectivity > MaxReflectivity {
			return Response{}, fmt.Errorf("%w: point %d reflectivity %v out of range", ErrMalformedDataset, i, p.Reflectivity)
		}
	}

	source := SourceSample
	if opts.UpstreamHost != "" && strings.Contains(opts.SourceURL, opts.UpstreamHost) {
		source = SourceMRMS
	}

	generatedAt := opts.GeneratedAt.UTC()
	return Response{
		Dataset: ds,
		Metadata: Metadata{
			DataSource:     source,
			SourceURL:      opts.SourceURL,
			SourceFileName: FileNameFromURL(opts.SourceURL),
			GeneratedAt:    generatedAt,
			CacheExpiresAt: generatedAt.Add(opts.TTL),
			TotalPoints:    len(ds.Points),
		},
	}, nil
}

// FileNameFromURL returns the last path segment of u, or u itself when it has none.
func FileNameFromURL(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// GeoJSON wire types.

// FeatureCollection is the JSON body served to the map client.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

type Properties struct {
	Reflectivity float64   `json:"reflectivity"`
	Timestamp    time.Time `json:"timestamp"`
}

// FeatureCollection encodes the dataset without metadata.
func (d Dataset) FeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: toFeatures(d.Points)}
}

// FeatureCollection encodes the response with its metadata.
func (r Response) FeatureCollection() FeatureCollection {
	fc := r.Dataset.FeatureCollection()
	md := r.Metadata
	fc.Metadata = &md
	return fc
}

// Points decodes a collection back into points, used by tooling that reads fixtures.
func (fc FeatureCollection) Points() []Point {
	points := make([]Point, len(fc.Features))
	for i, f := range fc.Features {
		points[i] = Point{
			Longitude:    f.Geometry.Coordinates[0],
			Latitude:     f.Geometry.Coordinates[1],
			Reflectivity: f.Properties.Reflectivity,
			ObservedAt:   f.Properties.Timestamp,
		}
	}
	return points
}

func toFeatures(points []Point) []Feature {
	features := make([]Feature, len(points))
	for i, p := range points {
		features[i] = Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Longitude, p.Latitude},
			},
			Properties: Properties{
				Reflectivity: p.Reflectivity,
				Timestamp:    p.ObservedAt,
			},
		}
	}
	return features
}
