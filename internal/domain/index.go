package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
)

// ErrInvalidBBox is returned for unparseable or empty bounding boxes.
var ErrInvalidBBox = errors.New("invalid bounding box")

const (
	indexMinChildren = 25
	indexMaxChildren = 50
	pointTolerance   = 1e-6
)

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("%w: want minLon,minLat,maxLon,maxLat, got %q", ErrInvalidBBox, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("%w: %q is not a number", ErrInvalidBBox, p)
		}
		v[i] = f
	}
	b := BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		return BBox{}, fmt.Errorf("%w: min must be below max in %q", ErrInvalidBBox, s)
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		return BBox{}, fmt.Errorf("%w: %q outside lon/lat range", ErrInvalidBBox, s)
	}
	return b, nil
}

// indexedPoint wraps a point for R-tree storage. seq keeps generation order.
type indexedPoint struct {
	seq  int
	rect rtreego.Rect
}

func (p *indexedPoint) Bounds() rtreego.Rect {
	return p.rect
}

// Index is an immutable R-tree over a dataset's points, keyed by (lon, lat).
type Index struct {
	tree   *rtreego.Rtree
	points []Point
}

// NewIndex builds an index over points. The slice is not copied and must not
// be modified afterwards.
func NewIndex(points []Point) *Index {
	tree := rtreego.NewTree(2, indexMinChildren, indexMaxChildren)
	for i, p := range points {
		tree.Insert(&indexedPoint{
			seq:  i,
			rect: rtreego.Point{p.Longitude, p.Latitude}.ToRect(pointTolerance),
		})
	}
	return &Index{tree: tree, points: points}
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	return ix.tree.Size()
}

// Within returns the points inside b in insertion order.
func (ix *Index) Within(b BBox) ([]Point, error) {
	rect, err := rtreego.NewRect(
		rtreego.Point{b.MinLon, b.MinLat},
		[]float64{b.MaxLon - b.MinLon, b.MaxLat - b.MinLat},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBBox, err)
	}

	hits := ix.tree.SearchIntersect(rect)
	seqs := make([]int, 0, len(hits))
	for _, h := range hits {
		ip, ok := h.(*indexedPoint)
		if !ok {
			continue
		}
		p := ix.points[ip.seq]
		// The tolerance rect can poke past the box edge.
		if b.Contains(p.Latitude, p.Longitude) {
			seqs = append(seqs, ip.seq)
		}
	}
	slices.Sort(seqs)

	out := make([]Point, len(seqs))
	for i, s := range seqs {
		out[i] = ix.points[s]
	}
	return out, nil
}
