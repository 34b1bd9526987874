package domain

import "math"

// BandTally is the number of points in one colour band.
type BandTally struct {
	Band  Band   `json:"band"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// SnapshotSummary is the compact description of a refreshed snapshot that is
// published downstream instead of the full point set.
type SnapshotSummary struct {
	Metadata
	Kind             Kind        `json:"kind"`
	PeakReflectivity float64     `json:"peakReflectivity"`
	Bands            []BandTally `json:"bands"`
}

// Summarize reduces a response to its metadata, peak value and band counts.
// The peak of an empty dataset is MinReflectivity.
func Summarize(resp Response) SnapshotSummary {
	h := Histogram(resp.Dataset.Points)
	bands := make([]BandTally, BandCount)
	for i, n := range h {
		b := Band(i)
		bands[i] = BandTally{Band: b, Color: b.Color(), Count: n}
	}

	peak := MinReflectivity
	for _, p := range resp.Dataset.Points {
		peak = math.Max(peak, p.Reflectivity)
	}

	return SnapshotSummary{
		Metadata:         resp.Metadata,
		Kind:             resp.Dataset.Kind,
		PeakReflectivity: peak,
		Bands:            bands,
	}
}
