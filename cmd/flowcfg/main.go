package main

import (
	"context"
	"os"
	"os/signal"

	subcheck "github.com/briney/FoldFlow/cmd/flowcfg/subcommands/check"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/common"
	sublengths "github.com/briney/FoldFlow/cmd/flowcfg/subcommands/lengths"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/logger"
	subresolve "github.com/briney/FoldFlow/cmd/flowcfg/subcommands/resolve"
	subver "github.com/briney/FoldFlow/cmd/flowcfg/subcommands/version"
	"github.com/briney/FoldFlow/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	logger := logger.Default()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	resolve := try.To(subresolve.New()).OrFatal(logger)
	check := try.To(subcheck.New()).OrFatal(logger)
	lengths := try.To(sublengths.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	flowcfg := try.To(
		flarc.NewCommandGroup(
			"FoldFlow inference configuration tool",
			common.CommonFlags{},
			flarc.WithSubcommand("resolve", resolve),
			flarc.WithSubcommand("check", check),
			flarc.WithSubcommand("lengths", lengths),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, flowcfg, flarc.WithHelp(true)))
}
