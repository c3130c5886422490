package compose_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/briney/FoldFlow/pkg/configs/compose"
	"github.com/briney/FoldFlow/pkg/configs/merge"
)

func TestParseOverrides(t *testing.T) {
	type Then struct {
		err  error
		want map[string]any
	}

	theory := func(when []string, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got, err := compose.ParseOverrides(when...)
			if !errors.Is(err, then.err) {
				t.Fatalf("want %v, but got %v", then.err, err)
			}
			if then.err != nil {
				return
			}
			if then.want == nil {
				if got != nil {
					t.Errorf("want nil, but got %+v", got)
				}
				return
			}
			if actual := decode(t, got); !reflect.DeepEqual(actual, then.want) {
				t.Errorf("want %#v, but got %#v", then.want, actual)
			}
		}
	}

	t.Run("nothing", theory(nil, Then{}))

	t.Run("typed values", theory(
		[]string{
			"inference.flow.num_t=500",
			"inference.flow.min_t=0.01",
			"inference.name=null",
			"inference.output_dir=./results",
			"inference.seed=",
		},
		Then{want: map[string]any{
			"inference": map[string]any{
				"flow":       map[string]any{"num_t": 500, "min_t": 0.01},
				"name":       nil,
				"output_dir": "./results",
				"seed":       "",
			},
		}},
	))

	t.Run("value with equal sign", theory(
		[]string{"inference.name=a=b"},
		Then{want: map[string]any{"inference": map[string]any{"name": "a=b"}}},
	))

	t.Run("later assignment wins", theory(
		[]string{"a.b=1", "a.b=2"},
		Then{want: map[string]any{"a": map[string]any{"b": 2}}},
	))

	t.Run("no equal sign", theory([]string{"a.b"}, Then{err: compose.ErrInvalidOverride}))

	t.Run("empty key segment", theory([]string{"a..b=1"}, Then{err: compose.ErrInvalidOverride}))

	t.Run("broken value", theory([]string{"a=[1"}, Then{err: compose.ErrInvalidOverride}))

	t.Run("conflicting assignments", theory(
		[]string{"a=1", "a.b=2"},
		Then{err: merge.ErrStructuralConflict},
	))
}
