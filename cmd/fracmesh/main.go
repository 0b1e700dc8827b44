package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fracmesh",
	Short: "Fractal signed distance fields meshed into GLB models",
	Long: `fracmesh samples a family of fractal and pattern signed distance
formulas over a regular grid, extracts the zero isosurface with marching
cubes and writes the result as a GLB container or a binary STL.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
