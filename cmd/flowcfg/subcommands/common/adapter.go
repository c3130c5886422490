package common

import (
	"context"
	"errors"

	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/logger"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

// ARG_ENTRY is the name of the argument for the entry document.
const ARG_ENTRY = "ENTRY"

// EntryArgs is the positional argument for the entry document.
func EntryArgs() flarc.Args {
	return flarc.Args{
		{
			Name: ARG_ENTRY, Required: true,
			Help: "Filepath of the entry configuration document (.yaml, .yml, .json or .toml).",
		},
	}
}

type Task[T any] func(
	ctx context.Context,
	logger logrus.FieldLogger,
	commonFlags CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask adapts Task to flarc.Task.
//
// It takes CommonFlags out of params, and builds a logger writing to stderr of the commandline.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var cf CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				cf = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		l := logger.New(cl.Stderr(), cf.Verbose).WithField("command", cl.Fullname())
		return task(ctx, l, cf, cl, newpos)
	}
}
