package domain

import "iter"

// DefaultStride is the row/column step used when sampling the MRMS lattice.
const DefaultStride = 10

// GridDescriptor describes a regular lat/lon lattice. (La1, Lo1) is the first
// grid point and (La2, Lo2) the last.
type GridDescriptor struct {
	NX, NY   int
	DX, DY   float64 // degrees per cell
	La1, Lo1 float64
	La2, Lo2 float64
}

// MRMSGrid approximates the CONUS MRMS 2D product grid.
var MRMSGrid = GridDescriptor{
	NX:  3500,
	NY:  700,
	DX:  0.01,
	DY:  0.01,
	La1: 54.0,
	Lo1: -130.0,
	La2: 20.0,
	Lo2: -60.0,
}

// ContinentalBounds is the region sampled points must fall inside.
var ContinentalBounds = BBox{MinLon: -130, MinLat: 20, MaxLon: -60, MaxLat: 54}

// BBox is an axis-aligned lon/lat box. Edges are inclusive.
type BBox struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// Contains reports whether (lat, lon) lies within the box.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Bounds returns the box spanned by the first and last grid points.
func (g GridDescriptor) Bounds() BBox {
	return BBox{
		MinLon: min(g.Lo1, g.Lo2),
		MinLat: min(g.La1, g.La2),
		MaxLon: max(g.Lo1, g.Lo2),
		MaxLat: max(g.La1, g.La2),
	}
}

// Sample walks the lattice every stride rows and columns, yielding
// (lat, lon) pairs inside ContinentalBounds. A non-positive stride uses
// DefaultStride.
func (g GridDescriptor) Sample(stride int) iter.Seq2[float64, float64] {
	if stride <= 0 {
		stride = DefaultStride
	}
	return func(yield func(lat, lon float64) bool) {
		for y := 0; y < g.NY; y += stride {
			lat := g.La1 - float64(y)*g.DY
			for x := 0; x < g.NX; x += stride {
				lon := g.Lo1 + float64(x)*g.DX
				if !ContinentalBounds.Contains(lat, lon) {
					continue
				}
				if !yield(lat, lon) {
					return
				}
			}
		}
	}
}
