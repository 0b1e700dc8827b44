package main

import (
	"fmt"
	"strings"

	"github.com/fracmesh/fracmesh/form3"
	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the implemented variants with their option keys",
	RunE:  runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(cmd *cobra.Command, args []string) error {
	for _, v := range form3.Variants() {
		p, err := form3.DefaultParams(v)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", v)
		fmt.Printf("  options: %s\n", strings.Join(p.Keys(), ", "))
		fmt.Printf("  defaults: %+v\n", p)
	}
	return nil
}
