package resolve

import (
	"context"
	"strings"

	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/common"
	"github.com/briney/FoldFlow/pkg/configs/inference"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Flags struct {
	Validated bool `flag:"validated" help:"Validate the merged configuration, and print it with absolute paths."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Print the merged configuration.",
		Flags{},
		common.EntryArgs(),
		common.NewTask(Task()),
		flarc.WithDescription(`
Resolve the "defaults" directive of ENTRY and print the merged configuration as YAML.

Fragments are looked for in the directory of the referring document, and then in --search-path.
Values passed with --set are merged last:

    {{ .Command }} --set inference.flow.num_t=500 ./config/inference.yaml

With --validated, the merged configuration is validated before printed.
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

		comp, err := cf.Resolver(logger).Resolve(entry)
		if err != nil {
			return err
		}

		tree := comp.Tree
		if cl.Flags().Validated {
			conf, err := inference.Validate(tree, inference.WithBaseDir(cf.BaseDir))
			if err != nil {
				return err
			}
			for _, n := range conf.Notices() {
				logger.WithField("field", n.Path).Warn(n.Message)
			}
			tree = conf.Tree()
		}
		tree.HeadComment = "fragments: " + strings.Join(comp.Fragments, ", ")

		enc := yaml.NewEncoder(cl.Stdout())
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	}
}
