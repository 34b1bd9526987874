package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/spf13/cobra"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var errValidationFailed = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Check a snapshot fixture or saved API response",
		Long:  `Verify GeoJSON structure, reflectivity range and rounding, coordinates and metadata, then print a colour band histogram.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), data)
		},
	}
}

func runValidate(out io.Writer, data []byte) error {
	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	phases := []*phase{
		validateStructure(fc),
		validateValues(fc),
		validateMetadata(fc),
	}

	fmt.Fprintln(out, "=== Radar Snapshot Validation ===")
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-24s %s\n", p.name, status)
	}

	printBands(out, fc.Points())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		return errValidationFailed
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return nil
}

func validateStructure(fc domain.FeatureCollection) *phase {
	p := &phase{name: "GeoJSON structure"}
	if fc.Type != "FeatureCollection" {
		p.errorf("type is %q, want FeatureCollection", fc.Type)
	}
	for i, f := range fc.Features {
		if f.Type != "Feature" {
			p.errorf("feature %d: type is %q", i, f.Type)
		}
		if f.Geometry.Type != "Point" {
			p.errorf("feature %d: geometry type is %q", i, f.Geometry.Type)
		}
	}
	return p
}

func validateValues(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Point values"}
	for i, pt := range fc.Points() {
		r := pt.Reflectivity
		if math.IsNaN(r) || r < domain.MinReflectivity || r > domain.MaxReflectivity {
			p.errorf("feature %d: reflectivity %v outside [%v, %v]", i, r, domain.MinReflectivity, domain.MaxReflectivity)
		}
		if math.Abs(r*10-math.Round(r*10)) > 1e-6 {
			p.errorf("feature %d: reflectivity %v has more than one decimal", i, r)
		}
		if !domain.ContinentalBounds.Contains(pt.Latitude, pt.Longitude) {
			p.errorf("feature %d: (%v, %v) outside the continental box", i, pt.Latitude, pt.Longitude)
		}
		if pt.ObservedAt.IsZero() {
			p.errorf("feature %d: missing timestamp", i)
		}
	}
	return p
}

func validateMetadata(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Metadata"}
	md := fc.Metadata
	if md == nil {
		p.errorf("metadata missing")
		return p
	}
	if md.DataSource != domain.SourceMRMS && md.DataSource != domain.SourceSample {
		p.errorf("unknown dataSource %q", md.DataSource)
	}
	if md.SourceFileName != domain.FileNameFromURL(md.SourceURL) {
		p.errorf("sourceFileName %q does not match sourceUrl %q", md.SourceFileName, md.SourceURL)
	}
	if md.TotalPoints != len(fc.Features) {
		p.errorf("totalPoints is %d, collection has %d features", md.TotalPoints, len(fc.Features))
	}
	if !md.CacheExpiresAt.After(md.GeneratedAt) {
		p.errorf("cacheExpiresAt %s is not after generatedAt %s", md.CacheExpiresAt, md.GeneratedAt)
	}
	return p
}

func printBands(out io.Writer, points []domain.Point) {
	h := domain.Histogram(points)
	fmt.Fprintf(out, "\nPoints: %d\n", len(points))
	for b, n := range h {
		band := domain.Band(b)
		fmt.Fprintf(out, "  band %d %s %6d\n", b, band.Color(), n)
	}
}
