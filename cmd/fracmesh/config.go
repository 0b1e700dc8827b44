package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// recipe is a TOML export preset:
//
//	variant = "typhoon"
//	res = 96
//	weld = true
//	output = "storm.glb"
//
//	[params]
//	typhoonScale = 2.1
//	typhoonIter = 16
//
// Flags given explicitly on the command line win over recipe values.
type recipe struct {
	Variant string             `toml:"variant"`
	Res     int                `toml:"res"`
	Iso     float64            `toml:"iso"`
	Weld    bool               `toml:"weld"`
	Output  string             `toml:"output"`
	Params  map[string]float64 `toml:"params"`
}

func loadRecipe(path string) (recipe, error) {
	var rec recipe
	if path == "" {
		return rec, nil
	}
	if _, err := toml.DecodeFile(path, &rec); err != nil {
		return rec, fmt.Errorf("recipe %s: %w", path, err)
	}
	return rec, nil
}
