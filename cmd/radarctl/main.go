// Command radarctl generates and checks radar snapshot fixtures. Fixtures are
// produced by the same domain package the service uses, under a fixed clock
// and noise seed, so they are reproducible.
//
// Usage:
//
//	go run ./cmd/radarctl generate --out testdata/snapshot.json --seed 42
//	go run ./cmd/radarctl validate testdata/snapshot.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "radarctl",
		Short:         "Radar snapshot fixture tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newValidateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
