// Package testfiles writes configuration documents for tests of subcommands.
package testfiles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const Base = `
experiment:
  eval_dir: null
inference:
  name: null
  gpu_id: 0
  seed: 123
  full_ckpt_dir: ./results/ckpt
  pt_hub_dir: ./.cache/torch/
  pmpnn_dir: ./ProteinMPNN/
  output_dir: ./inference_outputs/
  weights_path: ./weights/best.pth
  flow:
    num_t: 100
    noise_scale: 0.1
    min_t: 0.01
  samples:
    samples_per_length: 10
    seq_per_sample: 8
    min_length: 100
    max_length: 200
    length_step: 50
`

const Entry = `
defaults:
  - base
  - _self_

inference:
  flow:
    num_t: 500
`

// Write writes files into a new temporal directory, and returns the directory.
//
// Keys of files are filenames.
func Write(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// Replace returns Base where old is replaced with new once.
func Replace(old, new string) string {
	return strings.Replace(Base, old, new, 1)
}
