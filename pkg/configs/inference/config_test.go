package inference_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/briney/FoldFlow/pkg/cmp"
	"github.com/briney/FoldFlow/pkg/configs/inference"
)

func TestSampleSettings_Lengths(t *testing.T) {
	theory := func(min, max, step string, want []int) func(*testing.T) {
		return func(t *testing.T) {
			conf, err := validate(
				t, valid,
				"inference.samples.min_length="+min,
				"inference.samples.max_length="+max,
				"inference.samples.length_step="+step,
			)
			if err != nil {
				t.Fatal(err)
			}
			if got := conf.Samples().Lengths(); !cmp.SliceEq(got, want) {
				t.Errorf("want %v, but got %v", want, got)
			}
		}
	}

	t.Run("max_length is included when reached", theory("100", "300", "50", []int{100, 150, 200, 250, 300}))
	t.Run("stride passes over max_length", theory("100", "290", "50", []int{100, 150, 200, 250}))
	t.Run("min_length == max_length", theory("60", "60", "1", []int{60}))
	t.Run("stride longer than range", theory("60", "100", "500", []int{60}))

	maxInt := strconv.Itoa(math.MaxInt)
	t.Run("min_length == max_length == MaxInt", theory(maxInt, maxInt, "1", []int{math.MaxInt}))
	t.Run("stride near MaxInt", theory(
		strconv.Itoa(math.MaxInt-3), maxInt, "2",
		[]int{math.MaxInt - 3, math.MaxInt - 1},
	))
	t.Run("stride of MaxInt", theory("1", maxInt, maxInt, []int{1}))
}

func TestFlowSettings_Timesteps(t *testing.T) {
	theory := func(numT, minT string, want []float64) func(*testing.T) {
		return func(t *testing.T) {
			conf, err := validate(t, valid, "inference.flow.num_t="+numT, "inference.flow.min_t="+minT)
			if err != nil {
				t.Fatal(err)
			}
			got := conf.Flow().Timesteps()
			if !cmp.SliceEqWith(got, want, cmp.Near(1e-12)) {
				t.Errorf("want %v, but got %v", want, got)
			}
			for i := 1; i < len(got); i++ {
				if got[i-1] <= got[i] {
					t.Errorf("not decreasing at %d: %v", i, got)
				}
			}
		}
	}

	t.Run("evenly spaced", theory("5", "0.2", []float64{1, 0.8, 0.6, 0.4, 0.2}))
	t.Run("two points", theory("2", "0.01", []float64{1, 0.01}))
	t.Run("single point", theory("1", "0.01", []float64{0.01}))
}

func TestFlowSettings_Timesteps_EndsAtMinT(t *testing.T) {
	conf, err := validate(t, valid)
	if err != nil {
		t.Fatal(err)
	}
	ts := conf.Flow().Timesteps()
	if len(ts) != 500 {
		t.Fatalf("want 500 points, but got %d", len(ts))
	}
	if ts[0] != 1 || ts[len(ts)-1] != 0.01 {
		t.Errorf("want 1 .. 0.01, but got %f .. %f", ts[0], ts[len(ts)-1])
	}
}

func TestInferenceSettings_RunDir(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	t.Run("named run", func(t *testing.T) {
		conf, err := validate(t, valid, "inference.name=monomer-v1")
		if err != nil {
			t.Fatal(err)
		}
		if got := conf.Inference().RunDir(now); got != "/work/inference_outputs/monomer-v1" {
			t.Errorf("unexpected run dir: %s", got)
		}
	})

	t.Run("unnamed run", func(t *testing.T) {
		conf, err := validate(t, valid)
		if err != nil {
			t.Fatal(err)
		}
		if got := conf.Inference().RunDir(now); got != "/work/inference_outputs/05D_03M_2024Y_14h_07m_09s" {
			t.Errorf("unexpected run dir: %s", got)
		}
	})
}

func TestInferenceSettings_CheckWeights(t *testing.T) {
	dir := t.TempDir()
	weights := filepath.Join(dir, "best.pth")
	if err := os.WriteFile(weights, []byte("weights"), 0o600); err != nil {
		t.Fatal(err)
	}

	theory := func(path string, wantErr error) func(*testing.T) {
		return func(t *testing.T) {
			conf, err := validate(t, valid, "inference.weights_path="+path)
			if err != nil {
				t.Fatal(err)
			}
			if err := conf.Inference().CheckWeights(); !errors.Is(err, wantErr) {
				t.Errorf("want %v, but got %v", wantErr, err)
			}
		}
	}

	t.Run("regular file", theory(weights, nil))
	t.Run("missing file", theory(filepath.Join(dir, "missing.pth"), inference.ErrWeightsNotFound))
	t.Run("directory", theory(dir, inference.ErrWeightsNotFound))
}
