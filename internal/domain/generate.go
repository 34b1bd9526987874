package domain

import (
	"math"

	"github.com/jonboulle/clockwork"
)

// RandomPointCount is the size of every RandomGenerator dataset.
const RandomPointCount = 1000

// GridGenerator samples the MRMS lattice through the procedural model.
type GridGenerator struct {
	grid   GridDescriptor
	stride int
	model  *Model
	clock  clockwork.Clock
}

// NewGridGenerator creates a generator over MRMSGrid. A nil clock uses real time.
func NewGridGenerator(model *Model, stride int, clock clockwork.Clock) *GridGenerator {
	if stride <= 0 {
		stride = DefaultStride
	}
	return &GridGenerator{
		grid:   MRMSGrid,
		stride: stride,
		model:  model,
		clock:  realClockIfNil(clock),
	}
}

// Generate evaluates the model at every sampled grid point and keeps the
// points above clear air.
func (g *GridGenerator) Generate() Dataset {
	now := g.clock.Now().UTC()
	t := ModelTime(now)

	var points []Point
	for lat, lon := range g.grid.Sample(g.stride) {
		r := g.model.Reflectivity(lat, lon, t)
		if r <= MinReflectivity {
			continue
		}
		points = append(points, Point{
			Longitude:    lon,
			Latitude:     lat,
			Reflectivity: r,
			ObservedAt:   now,
		})
	}
	return Dataset{Points: points, Kind: KindGrid}
}

// RandomGenerator scatters uniformly random points over the CONUS. It is the
// fallback when structured generation fails.
type RandomGenerator struct {
	rnd   RandomSource
	clock clockwork.Clock
}

// NewRandomGenerator creates a random generator. A nil clock uses real time.
func NewRandomGenerator(rnd RandomSource, clock clockwork.Clock) *RandomGenerator {
	return &RandomGenerator{rnd: rnd, clock: realClockIfNil(clock)}
}

// Generate returns RandomPointCount points with lat in [25,50), lon in
// [-125,-75) and reflectivity in [-10,60).
func (g *RandomGenerator) Generate() Dataset {
	now := g.clock.Now().UTC()
	points := make([]Point, RandomPointCount)
	for i := range points {
		lat := 25 + g.rnd.Float64()*25
		lon := -125 + g.rnd.Float64()*50
		// Truncate rather than round so 59.96 cannot become 60.0.
		r := math.Floor((g.rnd.Float64()*70-10)*10) / 10
		points[i] = Point{
			Longitude:    lon,
			Latitude:     lat,
			Reflectivity: r,
			ObservedAt:   now,
		}
	}
	return Dataset{Points: points, Kind: KindRandom}
}
