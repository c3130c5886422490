package lengths_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/common"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/internal/commandline"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/internal/testfiles"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/lengths"
	"github.com/briney/FoldFlow/cmd/flowcfg/subcommands/logger"
	"github.com/briney/FoldFlow/pkg/configs/inference"
)

func TestLengths(t *testing.T) {
	type When struct {
		base  string
		flags lengths.Flags
		set   []string
	}
	type Then struct {
		err    error
		stdout string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dir := testfiles.Write(t, map[string]string{
				"inference.yaml": testfiles.Entry,
				"base.yaml":      when.base,
			})

			stdout := new(strings.Builder)
			err := lengths.Task()(
				context.Background(),
				logger.Null(),
				common.CommonFlags{BaseDir: dir, Set: when.set},
				commandline.MockCommandline[lengths.Flags]{
					Fullname_: "flowcfg lengths",
					Stdout_:   stdout,
					Stderr_:   new(strings.Builder),
					Flags_:    when.flags,
					Args_: map[string][]string{
						common.ARG_ENTRY: {filepath.Join(dir, "inference.yaml")},
					},
				},
				[]any{},
			)
			if !errors.Is(err, then.err) {
				t.Fatalf("want %v, but got %v", then.err, err)
			}
			if got := stdout.String(); got != then.stdout {
				t.Errorf("stdout: want %q, but got %q", then.stdout, got)
			}
		}
	}

	t.Run("lengths", theory(
		When{base: testfiles.Base},
		Then{stdout: "100\n150\n200\n"},
	))

	t.Run("plan", theory(
		When{base: testfiles.Base, flags: lengths.Flags{Plan: true}},
		Then{stdout: "100\t10\t80\n150\t10\t80\n200\t10\t80\n"},
	))

	t.Run("single length", theory(
		When{
			base: testfiles.Base,
			set:  []string{"inference.samples.min_length=64", "inference.samples.max_length=64"},
		},
		Then{stdout: "64\n"},
	))

	t.Run("invalid", theory(
		When{base: testfiles.Replace("length_step: 50", "length_step: 0")},
		Then{err: inference.ErrValidation, stdout: ""},
	))
}
