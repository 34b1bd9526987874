package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateThenValidate(t *testing.T) {
	for _, kind := range []string{"grid", "random"} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fixtures", "snapshot.json")

			out, err := execute(t, "generate", "--out", path, "--kind", kind, "--seed", "42")
			require.NoError(t, err)
			assert.Contains(t, out, "wrote")

			out, err = execute(t, "validate", path)
			require.NoError(t, err, out)
			assert.Contains(t, out, "All validations passed.")
			assert.Contains(t, out, "band 7 #800080")
		})
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	first, err := execute(t, "generate", "--kind", "random", "--seed", "7")
	require.NoError(t, err)
	second, err := execute(t, "generate", "--kind", "random", "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	var fc domain.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(first), &fc))
	assert.Len(t, fc.Features, domain.RandomPointCount)
	assert.Equal(t, domain.SourceSample, fc.Metadata.DataSource)
}

func TestGenerateRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown kind", args: []string{"generate", "--kind", "hexagonal"}},
		{name: "bad time", args: []string{"generate", "--at", "yesterday"}},
		{name: "zero seed", args: []string{"generate", "--seed", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsProblems(t *testing.T) {
	fc := domain.FeatureCollection{
		Type: "FeatureCollection",
		Features: []domain.Feature{{
			Type:       "Feature",
			Geometry:   domain.Geometry{Type: "Point", Coordinates: [2]float64{-150, 35}},
			Properties: domain.Properties{Reflectivity: 71.25},
		}},
		Metadata: &domain.Metadata{DataSource: domain.SourceMRMS, TotalPoints: 2},
	}
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := execute(t, "validate", path)

	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "Point values")
	assert.Contains(t, out, "outside [-10, 70]")
	assert.Contains(t, out, "more than one decimal")
	assert.Contains(t, out, "outside the continental box")
	assert.Contains(t, out, "totalPoints is 2")
}

func TestValidateOutOfRangeFixtureFailsWithoutPanic(t *testing.T) {
	fc := domain.FeatureCollection{
		Type: "FeatureCollection",
		Features: []domain.Feature{{
			Type:       "Feature",
			Geometry:   domain.Geometry{Type: "Point", Coordinates: [2]float64{-91, 35}},
			Properties: domain.Properties{Reflectivity: 1e20},
		}},
		Metadata: &domain.Metadata{DataSource: domain.SourceSample, TotalPoints: 1},
	}
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "huge.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var out string
	require.NotPanics(t, func() { out, err = execute(t, "validate", path) })

	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "outside [-10, 70]")
	assert.Contains(t, out, "band 7 #800080      1")
}

func TestValidateRequiresPath(t *testing.T) {
	_, err := execute(t, "validate")
	assert.Error(t, err)
}
