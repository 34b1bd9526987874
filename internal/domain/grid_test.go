package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMRMSGrid_Bounds(t *testing.T) {
	assert.Equal(t, ContinentalBounds, MRMSGrid.Bounds())
}

func TestSample_DefaultStride(t *testing.T) {
	var n int
	var first [2]float64
	for lat, lon := range MRMSGrid.Sample(0) {
		if n == 0 {
			first = [2]float64{lat, lon}
		}
		n++
		assert.True(t, ContinentalBounds.Contains(lat, lon), "(%v, %v) outside bounds", lat, lon)
	}

	assert.Equal(t, 350*70, n)
	assert.Equal(t, [2]float64{54.0, -130.0}, first)
}

func TestSample_StrideControlsDensity(t *testing.T) {
	count := func(stride int) int {
		n := 0
		for range MRMSGrid.Sample(stride) {
			n++
		}
		return n
	}

	assert.Equal(t, count(DefaultStride), count(-3))
	assert.Equal(t, 175*35, count(20))
	assert.Equal(t, 35*7, count(100))
}

func TestSample_SkipsPointsOutsideBounds(t *testing.T) {
	g := GridDescriptor{NX: 3, NY: 3, DX: 10, DY: 10, La1: 60, Lo1: -140}

	var got [][2]float64
	for lat, lon := range g.Sample(1) {
		got = append(got, [2]float64{lat, lon})
	}

	// Only rows at 50 and 40 and columns at -130 and -120 are inside.
	assert.Equal(t, [][2]float64{{50, -130}, {50, -120}, {40, -130}, {40, -120}}, got)
}

func TestSample_StopsWhenYieldReturnsFalse(t *testing.T) {
	n := 0
	for range MRMSGrid.Sample(DefaultStride) {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
}

func TestBBox_ContainsIsInclusive(t *testing.T) {
	b := BBox{MinLon: -10, MinLat: 0, MaxLon: 10, MaxLat: 20}

	assert.True(t, b.Contains(0, -10))
	assert.True(t, b.Contains(20, 10))
	assert.False(t, b.Contains(20.01, 0))
	assert.False(t, b.Contains(10, -10.01))
}
