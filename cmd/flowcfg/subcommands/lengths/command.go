package lengths

import (
	"context"
	"fmt"

	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/common"
	"github.com/briney/FoldFlow/pkg/configs/inference"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Plan bool `flag:"plan" alias:"p" help:"Print how many samples and sequences are generated for each length."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Print sequence lengths to be sampled.",
		Flags{},
		common.EntryArgs(),
		common.NewTask(Task()),
		flarc.WithDescription(`
Print sequence lengths to be sampled, one per line.

Lengths are min_length, min_length + length_step, ... up to max_length (inclusive).

With --plan, each line has the length, samples_per_length and
samples_per_length * seq_per_sample, separated by tabs.
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		cf common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		entry := cl.Args()[common.ARG_ENTRY][0]

		conf, err := inference.Load(entry, cf.Options(logger)...)
		if err != nil {
			return err
		}

		s := conf.Samples()
		for _, l := range s.Lengths() {
			if !cl.Flags().Plan {
				fmt.Fprintln(cl.Stdout(), l)
				continue
			}
			fmt.Fprintf(
				cl.Stdout(), "%d\t%d\t%d\n",
				l, s.SamplesPerLength(), s.SamplesPerLength()*s.SeqPerSample(),
			)
		}
		return nil
	}
}
