package common

import (
	"github.com/briney/FoldFlow/pkg/configs/compose"
	"github.com/briney/FoldFlow/pkg/configs/inference"
	"github.com/sirupsen/logrus"
)

// CommonFlags are flags shared by subcommands reading configurations.
type CommonFlags struct {
	SearchPath []string `flag:"search-path" alias:"I" metavar:"DIR" help:"Directory where fragments are looked for, after the directory of the referring document. Repeatable."`
	Set        []string `flag:"set" metavar:"KEY=VALUE" help:"Override a value, like inference.flow.num_t=500. Repeatable. Later one wins."`
	BaseDir    string   `flag:"base-dir" metavar:"DIR" help:"Directory which relative paths in configuration are based on. Default is the working directory."`
	Verbose    bool     `flag:"verbose" alias:"v" help:"Log progress of resolution."`
}

// Resolver returns a Resolver looking for fragments as flags say.
func (cf CommonFlags) Resolver(logger logrus.FieldLogger) *compose.Resolver {
	return compose.NewResolver(
		compose.DirStore{SearchPath: cf.SearchPath},
		compose.WithOverrides(cf.Set...),
		compose.WithLogger(logger),
	)
}

// Options returns options for inference.Load as flags say.
func (cf CommonFlags) Options(logger logrus.FieldLogger) []inference.Option {
	return []inference.Option{
		inference.WithSearchPath(cf.SearchPath...),
		inference.WithOverrides(cf.Set...),
		inference.WithBaseDir(cf.BaseDir),
		inference.WithLogger(logger),
	}
}
