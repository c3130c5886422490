package inference

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a validated configuration for an inference run.
//
// To get Config, use Validate or Load. Config is immutable and safe to share.
type Config struct {
	experiment *ExperimentSettings
	inference  *InferenceSettings
	tree       *yaml.Node
	notices    []Notice
}

func (c *Config) Experiment() *ExperimentSettings {
	return c.experiment
}

func (c *Config) Inference() *InferenceSettings {
	return c.inference
}

// Flow is shorthand for Inference().Flow().
func (c *Config) Flow() *FlowSettings {
	return c.inference.flow
}

// Samples is shorthand for Inference().Samples().
func (c *Config) Samples() *SampleSettings {
	return c.inference.samples
}

// Notices returns remarks found in validation. They are not errors.
func (c *Config) Notices() []Notice {
	return append([]Notice{}, c.notices...)
}

type ExperimentSettings struct {
	evalDir *string
}

// EvalDir returns the directory where evaluation results are stored.
//
// When evaluation output is disabled, it returns ("", false).
func (e *ExperimentSettings) EvalDir() (string, bool) {
	if e.evalDir == nil {
		return "", false
	}
	return *e.evalDir, true
}

type InferenceSettings struct {
	name        *string
	gpuID       int
	seed        int
	fullCkptDir string
	ptHubDir    string
	pmpnnDir    string
	outputDir   string
	weightsPath string
	flow        *FlowSettings
	samples     *SampleSettings
}

// Name of the run. It returns ("", false) when it is not named.
func (i *InferenceSettings) Name() (string, bool) {
	if i.name == nil {
		return "", false
	}
	return *i.name, true
}

// Index of GPU device to run on.
func (i *InferenceSettings) GPUID() int {
	return i.gpuID
}

// Seed for sampling.
func (i *InferenceSettings) Seed() int {
	return i.seed
}

func (i *InferenceSettings) FullCkptDir() string {
	return i.fullCkptDir
}

func (i *InferenceSettings) PtHubDir() string {
	return i.ptHubDir
}

func (i *InferenceSettings) PmpnnDir() string {
	return i.pmpnnDir
}

func (i *InferenceSettings) OutputDir() string {
	return i.outputDir
}

// Absolute path to model weights. Existence is not checked; see CheckWeights.
func (i *InferenceSettings) WeightsPath() string {
	return i.weightsPath
}

func (i *InferenceSettings) Flow() *FlowSettings {
	return i.flow
}

func (i *InferenceSettings) Samples() *SampleSettings {
	return i.samples
}

// RunDirLayout is the layout of directory names for unnamed runs.
const RunDirLayout = "02D_01M_2006Y_15h_04m_05s"

// RunDir returns the directory where results of this run are written.
//
// It is output_dir/name, or output_dir/<now formatted with RunDirLayout> for unnamed runs.
func (i *InferenceSettings) RunDir(now time.Time) string {
	if name, ok := i.Name(); ok {
		return filepath.Join(i.outputDir, name)
	}
	return filepath.Join(i.outputDir, now.Format(RunDirLayout))
}

// CheckWeights checks that weights_path refers a regular file.
//
// It returns an error wrapping ErrWeightsNotFound if not.
func (i *InferenceSettings) CheckWeights() error {
	stat, err := os.Stat(i.weightsPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWeightsNotFound, i.weightsPath, err)
	}
	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrWeightsNotFound, i.weightsPath)
	}
	return nil
}

type FlowSettings struct {
	numT       int
	noiseScale float64
	minT       float64
}

// Number of discretization steps.
func (f *FlowSettings) NumT() int {
	return f.numT
}

func (f *FlowSettings) NoiseScale() float64 {
	return f.noiseScale
}

// Terminal time of the process, in (0, 1).
func (f *FlowSettings) MinT() float64 {
	return f.minT
}

// Timesteps returns num_t points spaced evenly from 1.0 down to min_t.
//
// When num_t is 1, it is [min_t].
func (f *FlowSettings) Timesteps() []float64 {
	ts := make([]float64, f.numT)
	if f.numT == 1 {
		ts[0] = f.minT
		return ts
	}
	step := (1 - f.minT) / float64(f.numT-1)
	for n := range ts {
		ts[n] = 1 - step*float64(n)
	}
	ts[len(ts)-1] = f.minT
	return ts
}

type SampleSettings struct {
	samplesPerLength int
	seqPerSample     int
	minLength        int
	maxLength        int
	lengthStep       int
}

func (s *SampleSettings) SamplesPerLength() int {
	return s.samplesPerLength
}

func (s *SampleSettings) SeqPerSample() int {
	return s.seqPerSample
}

func (s *SampleSettings) MinLength() int {
	return s.minLength
}

func (s *SampleSettings) MaxLength() int {
	return s.maxLength
}

func (s *SampleSettings) LengthStep() int {
	return s.lengthStep
}

// Lengths returns min_length, min_length+length_step, ... up to max_length, inclusive.
func (s *SampleSettings) Lengths() []int {
	lengths := []int{}
	for l := s.minLength; ; l += s.lengthStep {
		lengths = append(lengths, l)
		// compared without adding, not to overflow near math.MaxInt.
		if s.maxLength-s.lengthStep < l {
			break
		}
	}
	return lengths
}
