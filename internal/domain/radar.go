package domain

import (
	"errors"
	"time"
)

// ErrMalformedDataset is returned when a dataset cannot be wrapped into a response.
var ErrMalformedDataset = errors.New("malformed radar dataset")

// Kind records which generator produced a dataset.
type Kind string

const (
	KindGrid   Kind = "grid"
	KindRandom Kind = "random"
)

// DataSource is the client-facing provenance label.
type DataSource string

const (
	SourceMRMS   DataSource = "MRMS"
	SourceSample DataSource = "Sample"
)

// FallbackSourceURL marks an acquisition that never reached the upstream.
const FallbackSourceURL = "fallback-sample"

const (
	MinReflectivity = -10.0
	MaxReflectivity = 70.0
)

// Point is one reflectivity sample.
type Point struct {
	Longitude    float64
	Latitude     float64
	Reflectivity float64 // dBZ
	ObservedAt   time.Time
}

// Dataset is an ordered collection of points from a single generator run.
type Dataset struct {
	Points []Point
	Kind   Kind
}

// RawSnapshot is an undecoded upstream file.
type RawSnapshot struct {
	URL       string
	FileName  string
	Data      []byte
	FetchedAt time.Time
}

// Metadata describes where a served dataset came from and how long it is cached.
type Metadata struct {
	DataSource     DataSource `json:"dataSource"`
	SourceURL      string     `json:"sourceUrl"`
	SourceFileName string     `json:"sourceFileName"`
	GeneratedAt    time.Time  `json:"generatedAt"`
	CacheExpiresAt time.Time  `json:"cacheExpiresAt"`
	TotalPoints    int        `json:"totalPoints"`
}
