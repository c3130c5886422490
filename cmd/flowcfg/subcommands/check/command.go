package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/common"
	"github.com/briney/FoldFlow/pkg/configs/compose"
	"github.com/briney/FoldFlow/pkg/configs/inference"
	"github.com/briney/FoldFlow/pkg/utils/filewatch"
	kpath "github.com/briney/FoldFlow/pkg/utils/path"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Watch   bool `flag:"watch" alias:"w" help:"Check again whenever one of the documents is modified, until interrupted."`
	Weights bool `flag:"weights" help:"Also check that weights_path refers an existing file."`
}

// settle is how long to wait after a modification before checking again.
const settle = 100 * time.Millisecond

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Validate a configuration and print every problem.",
		Flags{},
		common.EntryArgs(),
		common.NewTask(Task()),
		flarc.WithDescription(`
Resolve ENTRY, validate the merged configuration, and print every problem found.

It exits with non-zero status if there are problems.

With --watch, it keeps running and checks again whenever ENTRY or one of its fragments
is modified. Problems are printed but it does not exit until interrupted.
`),
	)
}

// ErrInvalid is returned when the configuration has problems.
var ErrInvalid = errors.New("configuration has problems")

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		cf common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		entry := cl.Args()[common.ARG_ENTRY][0]
		flags := cl.Flags()
		resolver := cf.Resolver(logger)

		if !flags.Watch {
			_, ok := run(cl.Stdout(), resolver, entry, cf.BaseDir, flags.Weights)
			if !ok {
				return ErrInvalid
			}
			return nil
		}

		for {
			sources, _ := run(cl.Stdout(), resolver, entry, cf.BaseDir, flags.Weights)
			if len(sources) == 0 {
				abs, err := kpath.Resolve(entry, "")
				if err != nil {
					return err
				}
				sources = []string{abs}
			}

			wctx, cancel, err := filewatch.UntilModifyContext(ctx, sources...)
			if err != nil {
				return err
			}
			<-wctx.Done()
			cause := context.Cause(wctx)
			cancel()
			if ctx.Err() != nil {
				return nil
			}
			logger.WithField("cause", cause).Debug("checking again")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settle):
			}
		}
	}
}

// run checks the entry once, and writes the result.
//
// It returns source files read, and whether the configuration is valid.
func run(w io.Writer, resolver *compose.Resolver, entry string, baseDir string, weights bool) ([]string, bool) {
	comp, err := resolver.Resolve(entry)
	if err != nil {
		fmt.Fprintf(w, "NG: %s\n%s\n", entry, err)
		if rerr := new(compose.ResolveError); errors.As(err, &rerr) {
			return rerr.Sources, false
		}
		return nil, false
	}

	conf, err := inference.Validate(comp.Tree, inference.WithBaseDir(baseDir))
	if err == nil && weights {
		err = conf.Inference().CheckWeights()
	}
	if err != nil {
		fmt.Fprintf(w, "NG: %s\n%s\n", entry, err)
		return comp.Sources, false
	}

	fmt.Fprintf(w, "OK: %s\n", entry)
	for _, n := range conf.Notices() {
		fmt.Fprintf(w, "  notice: %s\n", n)
	}
	return comp.Sources, true
}
