package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/form3"
	"github.com/fracmesh/fracmesh/glb"
	"github.com/fracmesh/fracmesh/pipeline"
	"github.com/fracmesh/fracmesh/render"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// weldTolerance collapses only bit-near duplicates: marching cubes emits
// exact duplicate vertices on shared cell edges, so any tolerance far below
// the sample spacing is safe.
const weldTolerance = 1e-9

var (
	exportOutput    string
	exportRes       int
	exportIso       float64
	exportSet       []string
	exportConfig    string
	exportWeld      bool
	exportSTL       bool
	exportStreaming bool
)

var exportCmd = &cobra.Command{
	Use:   "export <variant>",
	Short: "Mesh a variant and write a GLB (or STL) file",
	Long: `Export samples the chosen variant over its bounding box, runs marching
cubes at the requested resolution and writes a GLB container with positions,
normals and triangle indices. Parameters can be overridden one at a time
with --set or loaded from a TOML recipe.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default <variant>.glb)")
	exportCmd.Flags().IntVar(&exportRes, "res", pipeline.DefaultResolution, "Samples per axis")
	exportCmd.Flags().Float64Var(&exportIso, "iso", 0, "Isosurface level")
	exportCmd.Flags().StringArrayVar(&exportSet, "set", nil, "Override a parameter, e.g. --set powerBase=9")
	exportCmd.Flags().StringVar(&exportConfig, "config", "", "TOML recipe file")
	exportCmd.Flags().BoolVar(&exportWeld, "weld", false, "Weld shared vertices before writing")
	exportCmd.Flags().BoolVar(&exportSTL, "stl", false, "Write binary STL instead of GLB")
	exportCmd.Flags().BoolVar(&exportStreaming, "streaming", false, "Render through the slab window to bound memory")
}

func runExport(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe(exportConfig)
	if err != nil {
		return err
	}
	tag := rec.Variant
	if len(args) == 1 {
		tag = args[0]
	}
	if tag == "" {
		return fmt.Errorf("no variant given: pass one as an argument or name it in the recipe")
	}
	v, err := form3.ParseVariant(tag)
	if err != nil {
		return err
	}
	tag = v.String()
	p, err := form3.DefaultParams(v)
	if err != nil {
		return err
	}
	for key, val := range rec.Params {
		if err := p.Set(key, val); err != nil {
			return err
		}
	}
	for _, kv := range exportSet {
		key, val, err := splitOption(kv)
		if err != nil {
			return err
		}
		if err := p.Set(key, val); err != nil {
			return err
		}
	}

	res := exportRes
	if !cmd.Flags().Changed("res") && rec.Res > 0 {
		res = rec.Res
	}
	iso := exportIso
	if !cmd.Flags().Changed("iso") && rec.Iso != 0 {
		iso = rec.Iso
	}
	out := exportOutput
	if out == "" {
		out = rec.Output
	}
	if out == "" {
		if exportSTL {
			out = tag + ".stl"
		} else {
			out = tag + ".glb"
		}
	}

	opts := pipeline.Options{
		Res:       fracmesh.V3i{res, res, res},
		Iso:       iso,
		Streaming: exportStreaming,
		Progress:  barProgress(),
		GLB:       glb.Options{Name: tag},
	}
	if exportWeld || rec.Weld {
		opts.WeldTol = weldTolerance
	}

	log.Debugf("meshing %s at %d^3, iso %g", tag, res, iso)
	blob, m, err := pipeline.Export(p, opts)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if exportSTL {
		fp, err := os.Create(out)
		if err != nil {
			return err
		}
		defer fp.Close()
		if err := render.WriteSTL(fp, m.Triangles()); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, blob, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %s: %d vertices, %d triangles", out, len(m.Positions), m.NumTriangles())
	return nil
}

func splitOption(kv string) (string, float64, error) {
	key, val, ok := strings.Cut(kv, "=")
	if !ok {
		return "", 0, fmt.Errorf("option %q is not key=value", kv)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, fmt.Errorf("option %q: %v", kv, err)
	}
	return strings.TrimSpace(key), f, nil
}

// barProgress adapts the pipeline's progress reports to a terminal bar.
func barProgress() render.ProgressFunc {
	var bar *progressbar.ProgressBar
	stage := ""
	return func(done, total int, s string) bool {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription(s),
				progressbar.OptionShowCount(),
			)
			stage = s
		}
		if s != stage {
			bar.Describe(s)
			stage = s
		}
		bar.Set(done)
		return false
	}
}
