package inference

import (
	"errors"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/document"
	"github.com/briney/FoldFlow/pkg/utils/yamler"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Validate checks a merged tree against the schema, and seals it into Config.
//
// Validate does not stop at the first problem. It reports every problem found.
//
// # Args
//
// - tree: merged configuration. A document node is unwrapped.
//
// - options: WithBaseDir is used to resolve relative paths. Others are ignored.
//
// # Returns
//
// - *Config: validated configuration. Path fields in it are absolute.
//
// - error: ValidationErrors (errors.Is ErrValidation) sorted by path, when there are problems.
// Then Config is nil.
func Validate(tree *yaml.Node, options ...Option) (*Config, error) {
	opts := newOptions(options...)

	root := tree
	if root != nil && root.Kind == yaml.DocumentNode && 0 < len(root.Content) {
		root = root.Content[0]
	}
	if isNull(root) {
		root = yamler.Map()
	}
	if root.Kind != yaml.MappingNode {
		return nil, ValidationErrors{
			{Kind: WrongType, Path: "(root)", Constraint: "mapping", Actual: showNode(root)},
		}
	}

	r := &reader{baseDir: opts.baseDir}
	cm := r.read(root)
	r.checkRanges(cm)
	if len(r.errs) != 0 {
		r.errs.sort()
		return nil, r.errs
	}

	sealed := seal(cm)
	sealed.tree = canonical(document.Expand(root), sealed)
	sealed.notices = r.notices
	return sealed, nil
}

func (r *reader) checkRanges(cm *configMarshall) {
	err := ranges.Struct(cm)
	if err == nil {
		return
	}
	verrs := validator.ValidationErrors{}
	if !errors.As(err, &verrs) {
		r.errs = append(r.errs, &FieldError{Kind: OutOfRange, Path: "(root)", Constraint: err.Error()})
		return
	}
	for _, fe := range verrs {
		// namespace is like "configMarshall.inference.flow.min_t". Drop the type name.
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		r.errs = append(r.errs, &FieldError{
			Kind:       OutOfRange,
			Path:       path,
			Constraint: constraint(fe),
			Actual:     show(fe.Value()),
		})
	}
}

// seal converts checked marshalling values into Config.
//
// Paths in marshalling values are absolute already.
func seal(cm *configMarshall) *Config {
	must := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	exp := &ExperimentSettings{}
	if cm.Experiment != nil {
		exp.evalDir = cm.Experiment.EvalDir
	}

	im := cm.Inference
	return &Config{
		experiment: exp,
		inference: &InferenceSettings{
			name:        im.Name,
			gpuID:       *im.GPUID,
			seed:        *im.Seed,
			fullCkptDir: must(im.FullCkptDir),
			ptHubDir:    must(im.PtHubDir),
			pmpnnDir:    must(im.PmpnnDir),
			outputDir:   must(im.OutputDir),
			weightsPath: must(im.WeightsPath),
			flow: &FlowSettings{
				numT:       *im.Flow.NumT,
				noiseScale: *im.Flow.NoiseScale,
				minT:       *im.Flow.MinT,
			},
			samples: &SampleSettings{
				samplesPerLength: *im.Samples.SamplesPerLength,
				seqPerSample:     *im.Samples.SeqPerSample,
				minLength:        *im.Samples.MinLength,
				maxLength:        *im.Samples.MaxLength,
				lengthStep:       *im.Samples.LengthStep,
			},
		},
	}
}

// canonical writes validated values back into the tree, so that queries see them.
//
// Keys out of the schema are kept as they are.
func canonical(root *yaml.Node, c *Config) *yaml.Node {
	str := func(s string) *yaml.Node { return yamler.Text(s, yamler.WithTag("!!str")) }
	opt := func(s string, ok bool) *yaml.Node {
		if !ok {
			return yamler.Null()
		}
		return str(s)
	}

	inf := c.inference
	set(root, opt(c.experiment.EvalDir()), "experiment", "eval_dir")
	set(root, opt(inf.Name()), "inference", "name")
	set(root, yamler.Int(inf.gpuID), "inference", "gpu_id")
	set(root, yamler.Int(inf.seed), "inference", "seed")
	set(root, str(inf.fullCkptDir), "inference", "full_ckpt_dir")
	set(root, str(inf.ptHubDir), "inference", "pt_hub_dir")
	set(root, str(inf.pmpnnDir), "inference", "pmpnn_dir")
	set(root, str(inf.outputDir), "inference", "output_dir")
	set(root, str(inf.weightsPath), "inference", "weights_path")

	flow := inf.flow
	set(root, yamler.Int(flow.numT), "inference", "flow", "num_t")
	set(root, yamler.Float(flow.noiseScale), "inference", "flow", "noise_scale")
	set(root, yamler.Float(flow.minT), "inference", "flow", "min_t")

	s := inf.samples
	set(root, yamler.Int(s.samplesPerLength), "inference", "samples", "samples_per_length")
	set(root, yamler.Int(s.seqPerSample), "inference", "samples", "seq_per_sample")
	set(root, yamler.Int(s.minLength), "inference", "samples", "min_length")
	set(root, yamler.Int(s.maxLength), "inference", "samples", "max_length")
	set(root, yamler.Int(s.lengthStep), "inference", "samples", "length_step")

	return root
}

// set puts value at the key path, creating mappings on the way.
//
// Every duplicated key on the way is replaced, and non-mapping on the way is replaced with a mapping.
func set(mapping *yaml.Node, value *yaml.Node, keys ...string) {
	key, rest := keys[0], keys[1:]

	found := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		found = true
		if len(rest) == 0 {
			mapping.Content[i+1] = value
			continue
		}
		if mapping.Content[i+1].Kind != yaml.MappingNode {
			mapping.Content[i+1] = yamler.Map()
		}
		set(mapping.Content[i+1], value, rest...)
	}
	if found {
		return
	}

	k := yamler.Text(key, yamler.WithTag("!!str"))
	if len(rest) == 0 {
		mapping.Content = append(mapping.Content, k, value)
		return
	}
	child := yamler.Map()
	set(child, value, rest...)
	mapping.Content = append(mapping.Content, k, child)
}
