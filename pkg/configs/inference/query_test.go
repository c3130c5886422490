package inference_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/briney/FoldFlow/pkg/configs/inference"
)

func TestConfig_Get(t *testing.T) {
	conf, err := validate(t, valid, "inference.flow.schedule=linear", "extras.tags=[a, b]")
	if err != nil {
		t.Fatal(err)
	}

	theory := func(path string, want any, wantErr error) func(*testing.T) {
		return func(t *testing.T) {
			got, err := conf.Get(path)
			if !errors.Is(err, wantErr) {
				t.Fatalf("want %v, but got %v", wantErr, err)
			}
			if wantErr != nil {
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("want %#v, but got %#v", want, got)
			}
		}
	}

	t.Run("int", theory("inference.flow.num_t", 500, nil))
	t.Run("float", theory("inference.flow.min_t", 0.01, nil))
	t.Run("resolved path", theory("inference.weights_path", "/work/weights/best.pth", nil))
	t.Run("null", theory("experiment.eval_dir", nil, nil))
	t.Run("mapping", theory("inference.flow", map[string]any{
		"num_t": 500, "noise_scale": 0.1, "min_t": 0.01, "schedule": "linear",
	}, nil))
	t.Run("key out of schema", theory("extras.tags", []any{"a", "b"}, nil))
	t.Run("no such key", theory("inference.flow.steps", nil, inference.ErrNoSuchKey))
	t.Run("beyond a leaf", theory("inference.flow.num_t.value", nil, inference.ErrNoSuchKey))
	t.Run("no such section", theory("training.epochs", nil, inference.ErrNoSuchKey))
}

func TestConfig_TypedGet(t *testing.T) {
	conf, err := validate(t, valid)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("GetInt", func(t *testing.T) {
		if got, err := conf.GetInt("inference.samples.max_length"); err != nil || got != 300 {
			t.Errorf("want 300, but got %d (%v)", got, err)
		}
		if _, err := conf.GetInt("inference.flow.min_t"); !errors.Is(err, inference.ErrTypeMismatch) {
			t.Errorf("want ErrTypeMismatch, but got %v", err)
		}
		if _, err := conf.GetInt("inference.flow"); !errors.Is(err, inference.ErrTypeMismatch) {
			t.Errorf("want ErrTypeMismatch, but got %v", err)
		}
		if _, err := conf.GetInt("inference.nothing"); !errors.Is(err, inference.ErrNoSuchKey) {
			t.Errorf("want ErrNoSuchKey, but got %v", err)
		}
	})

	t.Run("GetFloat", func(t *testing.T) {
		if got, err := conf.GetFloat("inference.flow.noise_scale"); err != nil || got != 0.1 {
			t.Errorf("want 0.1, but got %f (%v)", got, err)
		}
		if got, err := conf.GetFloat("inference.flow.num_t"); err != nil || got != 500 {
			t.Errorf("want 500, but got %f (%v)", got, err)
		}
		if _, err := conf.GetFloat("inference.output_dir"); !errors.Is(err, inference.ErrTypeMismatch) {
			t.Errorf("want ErrTypeMismatch, but got %v", err)
		}
	})

	t.Run("GetString", func(t *testing.T) {
		if got, err := conf.GetString("inference.output_dir"); err != nil || got != "/work/inference_outputs" {
			t.Errorf("unexpected output_dir: %s (%v)", got, err)
		}
		if _, err := conf.GetString("inference.name"); !errors.Is(err, inference.ErrTypeMismatch) {
			t.Errorf("null should not be a string, but got %v", err)
		}
		if _, err := conf.GetString("inference.seed"); !errors.Is(err, inference.ErrTypeMismatch) {
			t.Errorf("int should not be a string, but got %v", err)
		}
	})
}

func TestConfig_TreeIsCopy(t *testing.T) {
	conf, err := validate(t, valid)
	if err != nil {
		t.Fatal(err)
	}

	tree := conf.Tree()
	tree.Content = nil

	if got, err := conf.GetInt("inference.flow.num_t"); err != nil || got != 500 {
		t.Errorf("config is modified via Tree(): %d (%v)", got, err)
	}
}
