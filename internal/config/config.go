// Package config loads the optional tacopt.yaml project file: a
// pass allow-list, an iteration-cap override, and a verbosity flag.
//
// The teacher declares gopkg.in/yaml.v3 in go.mod but never imports
// it anywhere in cmd/ralph-cc or any pkg/ — an idle dependency. This
// gives it a real job: mini-C projects that want to isolate one pass
// under test, or cap the fixed-point driver tighter than the default
// 32 rounds, do so here instead of via flags alone (flags still win on
// conflict, wired in cmd/tacopt/main.go).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mini-c/tacopt/internal/errors"
	"github.com/mini-c/tacopt/pkg/optimize"
)

// AllPasses is the default enabled-pass set and fixed order, matching
// pkg/optimize.Run's hardcoded pipeline (spec §5).
var AllPasses = []string{
	"constfold", "copyprop", "cse", "licm", "lsr", "loopreduce", "deadcode",
}

// Options is the tacopt.yaml project file's shape.
type Options struct {
	MaxIterations int      `yaml:"max_iterations"`
	EnabledPasses []string `yaml:"enabled_passes"`
	Verbose       bool     `yaml:"verbose"`
}

// Default returns the options a tacopt invocation uses with no config
// file and no overriding flags.
func Default() Options {
	passes := make([]string, len(AllPasses))
	copy(passes, AllPasses)
	return Options{
		MaxIterations: optimize.MaxIterations,
		EnabledPasses: passes,
		Verbose:       false,
	}
}

// Load reads and parses a tacopt.yaml file at path, filling in
// defaults for any field the file omits (a file enabling only
// "verbose: true" still gets the default pass set and iteration cap).
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.New(errors.StageConfig, errors.SourceLocation{File: path}, "%s", err)
	}

	var raw Options
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Options{}, errors.New(errors.StageConfig, errors.SourceLocation{File: path}, "invalid config: %s", err)
	}

	if raw.MaxIterations > 0 {
		opts.MaxIterations = raw.MaxIterations
	}
	if len(raw.EnabledPasses) > 0 {
		opts.EnabledPasses = raw.EnabledPasses
	}
	opts.Verbose = raw.Verbose

	return opts, nil
}

// Validate reports an error if EnabledPasses names anything outside
// AllPasses — a typo in tacopt.yaml should fail loudly, not silently
// disable a pass.
func (o Options) Validate() error {
	valid := make(map[string]bool, len(AllPasses))
	for _, p := range AllPasses {
		valid[p] = true
	}
	for _, p := range o.EnabledPasses {
		if !valid[p] {
			return fmt.Errorf("unknown pass %q in enabled_passes", p)
		}
	}
	return nil
}
