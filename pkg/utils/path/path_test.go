package path_test

import (
	"os"
	"path/filepath"
	"testing"

	kpath "github.com/briney/FoldFlow/pkg/utils/path"
)

func TestResolve(t *testing.T) {
	t.Run("it cleans absolute path", func(t *testing.T) {
		result, err := kpath.Resolve("/a/b/../c/", "/ignored")

		if err != nil {
			t.Fatalf("unexpected error: %s (%+v)", err.Error(), err)
		}
		if result != "/a/c" {
			t.Errorf("(actual, expected) != (%s, %s)", result, "/a/c")
		}
	})

	t.Run("it expands tilde(~) into user home", func(t *testing.T) {
		userhome, err := os.UserHomeDir()
		if err != nil {
			t.Fatalf("can not get home dir: %s (%+v)", err.Error(), err)
		}

		for input, expected := range map[string]string{
			"~/a/b/c": filepath.Join(userhome, "a/b/c"),
			"~":       filepath.Clean(userhome),
		} {
			result, err := kpath.Resolve(input, "/base")
			if err != nil {
				t.Fatalf("unexpected error: %s (%+v)", err.Error(), err)
			}
			if result != expected {
				t.Errorf(
					"~ is not resolved into home dir: (actual, expected) != (%s, %s)", result, expected,
				)
			}
		}
	})

	t.Run("it resolves relative path from the working directory", func(t *testing.T) {
		pwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("can not get workdir: %s (%+v)", err.Error(), err)
		}
		result, err := kpath.Resolve("./a/b/c", "")
		expected := filepath.Join(pwd, "a/b/c")

		if err != nil {
			t.Fatalf("unexpected error: %s (%v)", err.Error(), err)
		}
		if result != expected {
			t.Errorf("relative path is not resolved: (actual, expected) != (%s, %s)", result, expected)
		}
	})

	t.Run("it resolves relative path from base", func(t *testing.T) {
		result, err := kpath.Resolve("./results/../ckpt/model.pth", "/srv/foldflow")
		if err != nil {
			t.Fatalf("unexpected error: %s (%v)", err.Error(), err)
		}
		if result != "/srv/foldflow/ckpt/model.pth" {
			t.Errorf("(actual, expected) != (%s, %s)", result, "/srv/foldflow/ckpt/model.pth")
		}
	})

	t.Run("it resolves relative base from the working directory", func(t *testing.T) {
		pwd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		result, err := kpath.Resolve("out", "runs")
		if err != nil {
			t.Fatalf("unexpected error: %s (%v)", err.Error(), err)
		}
		if expected := filepath.Join(pwd, "runs", "out"); result != expected {
			t.Errorf("(actual, expected) != (%s, %s)", result, expected)
		}
	})
}
