package domain

// fixedSource always returns the same value, pinning model noise.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// noNoise makes Model.Reflectivity return the clamped, rounded signal.
const noNoise = fixedSource(0.5)

// maxNoise adds just under +7.5 dBZ.
const maxNoise = fixedSource(0.9999)
