// Package domain models NOAA MRMS reflectivity snapshots and the procedural
// storm model that stands in for a real GRIB2 decoder.
//
// # Data Source
//
// The Multi-Radar/Multi-Sensor (MRMS) system publishes a 2D
// "ReflectivityAtLowestAltitude" product every two minutes at
// https://mrms.ncep.noaa.gov/2D/ReflectivityAtLowestAltitude/. The most recent
// file is always available under a fixed name:
//
//	MRMS_ReflectivityAtLowestAltitude.latest.grib2.gz
//
// The payload is a gzip-compressed GRIB2 message. This package never parses
// GRIB2: the pipeline hands the bytes to a pluggable resolver whose default
// ignores them and runs the procedural storm model below.
//
// # Grid Conventions
//
// [MRMSGrid] describes the lattice the points are laid out on:
//
//	nx=3500, ny=700, dx=dy=0.01°
//	first point (la1, lo1) = (54.0, -130.0), north-west corner
//	last point  (la2, lo2) = (20.0,  -60.0), south-east corner
//
// Row y runs south from la1 and column x runs east from lo1, so a cell maps to
// (la1 - y·dy, lo1 + x·dx). Sampling walks every Nth row and column (stride 10
// by default) and drops anything outside the [20,54]°N × [-130,-60]°E box.
// With these constants the walked rows only reach 47.1°N and the columns
// only reach -95.1°E.
//
// # Reflectivity
//
// Values are in dBZ, clamped to [-10, 70] and rounded to one decimal. The grid
// generator keeps only points strictly above -10 dBZ, which is clear air once
// clamped. Colour bands used by the map client are fixed at multiples of 10
// dBZ between 0 and 60, see [BandOf].
//
// # Model Time
//
// The storm model is a function of an explicit time parameter t, derived from
// wall-clock time by [ModelTime] (milliseconds since the epoch / 10^6). One
// unit of t is about 16.7 minutes, so storm cells drift slowly between
// snapshots. Noise is drawn from an injected [RandomSource].
package domain
