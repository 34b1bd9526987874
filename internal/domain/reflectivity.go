package domain

import "math"

const clearAir = -25.0

// Category classifies a storm cell's peak reflectivity.
type Category string

const (
	CategorySupercell    Category = "supercell"
	CategoryThunderstorm Category = "thunderstorm"
	CategoryRain         Category = "rain"
	CategorySquall       Category = "squall"
)

// Peak returns the reflectivity a cell of this category reaches at its centre
// at full intensity.
func (c Category) Peak() float64 {
	switch c {
	case CategorySupercell:
		return 65
	case CategoryThunderstorm:
		return 45
	case CategorySquall:
		return 35
	case CategoryRain:
		return 25
	default:
		return 0
	}
}

// StormCell is a circular region of enhanced reflectivity at one instant.
type StormCell struct {
	Lat       float64
	Lon       float64
	Intensity float64
	Size      float64 // radius in degrees
	Category  Category
}

// stormTrack moves a cell's centre around a fixed anchor.
type stormTrack struct {
	anchorLat, anchorLon float64
	amplitude            float64
	frequency            float64
	intensity            float64
	size                 float64
	category             Category
}

var stormTracks = []stormTrack{
	{anchorLat: 35, anchorLon: -95, amplitude: 4, frequency: 1.0, intensity: 1.0, size: 3.5, category: CategorySupercell},
	{anchorLat: 40, anchorLon: -80, amplitude: 2.5, frequency: 0.7, intensity: 0.7, size: 2.5, category: CategoryThunderstorm},
	{anchorLat: 28, anchorLon: -100, amplitude: 3, frequency: 1.3, intensity: 0.5, size: 4.0, category: CategoryRain},
	{anchorLat: 45, anchorLon: -70, amplitude: 1.5, frequency: 0.5, intensity: 0.8, size: 2.0, category: CategorySquall},
}

// StormCells returns the storm cells as they stand at model time t.
func StormCells(t float64) []StormCell {
	cells := make([]StormCell, len(stormTracks))
	for i, tr := range stormTracks {
		cells[i] = StormCell{
			Lat:       tr.anchorLat + math.Sin(t*tr.frequency)*tr.amplitude,
			Lon:       tr.anchorLon + math.Cos(t*tr.frequency)*tr.amplitude,
			Intensity: tr.intensity,
			Size:      tr.size,
			Category:  tr.category,
		}
	}
	return cells
}

// Model produces procedural reflectivity values for the storm cells above.
type Model struct {
	noise RandomSource
}

// NewModel creates a model drawing noise from src.
func NewModel(src RandomSource) *Model {
	return &Model{noise: src}
}

// Reflectivity returns the dBZ value at (lat, lon) and model time t, clamped
// to [MinReflectivity, MaxReflectivity] and rounded to one decimal.
func (m *Model) Reflectivity(lat, lon, t float64) float64 {
	v := signal(lat, lon, t)
	v += m.noise.Float64()*15 - 7.5
	return roundTenth(clamp(v, MinReflectivity, MaxReflectivity))
}

// signal is the noise-free part of the model.
func signal(lat, lon, t float64) float64 {
	v := clearAir

	for _, c := range StormCells(t) {
		dist := math.Hypot(lat-c.Lat, lon-c.Lon)
		if dist < c.Size {
			v += (c.Size - dist) / c.Size * c.Category.Peak() * c.Intensity
		}
	}

	// Frontal boundaries.
	if lat > 25 && lat < 50 && lon > -125 && lon < -65 {
		v += math.Sin((lat-30)*0.2) * math.Cos((lon+100)*0.15) * 8
		v += math.Sin((lat-40)*0.15) * math.Cos((lon+80)*0.2) * 6
	}

	// Orographic and coastal enhancement.
	if lat > 35 && lat < 45 && lon > -120 && lon < -110 {
		v += 5
	}
	if lat > 25 && lat < 35 && lon > -85 && lon < -75 {
		v += 3
	}

	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundTenth rounds half up to one decimal place.
func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
