package main

import (
	"fmt"
	"os"

	"github.com/fracmesh/fracmesh/glb"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.glb>",
	Short: "Display the header and manifest summary of a GLB file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	fp, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer fp.Close()
	info, err := glb.ReadInfo(fp)
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("  Generator: %s\n", info.Generator)
	fmt.Printf("  Version: %d\n", info.Version)
	fmt.Printf("  Total: %d bytes (JSON %d, binary %d)\n", info.TotalLength, info.JSONLength, info.BINLength)
	fmt.Printf("  Vertices: %d\n", info.Vertices)
	fmt.Printf("  Triangles: %d\n", info.Triangles)
	fmt.Printf("  Normals: %v\n", info.HasNormals)
	return nil
}
