package domain

import "math"

// Band is one of the eight colour classes the map client renders.
type Band int

// BandCount is the number of colour bands.
const BandCount = 8

var bandColors = [BandCount]string{
	"#000080", // dark blue
	"#0000FF",
	"#00FFFF",
	"#00FF00",
	"#FFFF00",
	"#FF8000",
	"#FF0000",
	"#800080", // purple
}

// BandOf classifies a reflectivity value: <0 is band 0, [0,10) band 1, up to
// [50,60) band 6; 60 and above is band 7. NaN is band 0.
func BandOf(dbz float64) Band {
	switch {
	case math.IsNaN(dbz) || dbz < 0:
		return 0
	case dbz >= 60:
		return BandCount - 1
	}
	return Band(int(dbz/10) + 1)
}

// Color returns the band's hex colour.
func (b Band) Color() string {
	if b < 0 || b >= BandCount {
		return ""
	}
	return bandColors[b]
}

// BandHistogram counts points per band.
type BandHistogram [BandCount]int

// Histogram buckets the points of a dataset by band.
func Histogram(points []Point) BandHistogram {
	var h BandHistogram
	for _, p := range points {
		h[BandOf(p.Reflectivity)]++
	}
	return h
}
