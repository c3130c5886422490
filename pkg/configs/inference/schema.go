package inference

import (
	"math"
	"reflect"
	"strings"

	kpath "github.com/briney/FoldFlow/pkg/utils/path"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Marshalling values. They are mutable and may be incomplete.
//
// Fields are pointers, nil when the field is absent or has a problem already reported.
// Ranges are checked by validator tags.

type configMarshall struct {
	Experiment *experimentMarshall `yaml:"experiment"`
	Inference  *inferenceMarshall  `yaml:"inference"`
}

type experimentMarshall struct {
	EvalDir *string `yaml:"eval_dir" validate:"omitnil,min=1"`
}

type inferenceMarshall struct {
	Name        *string `yaml:"name" validate:"omitnil,min=1"`
	GPUID       *int    `yaml:"gpu_id" validate:"omitnil,gte=0"`
	Seed        *int    `yaml:"seed"`
	FullCkptDir *string `yaml:"full_ckpt_dir" validate:"omitnil,min=1"`
	PtHubDir    *string `yaml:"pt_hub_dir" validate:"omitnil,min=1"`
	PmpnnDir    *string `yaml:"pmpnn_dir" validate:"omitnil,min=1"`
	OutputDir   *string `yaml:"output_dir" validate:"omitnil,min=1"`
	WeightsPath *string `yaml:"weights_path" validate:"omitnil,min=1"`

	Flow    *flowMarshall    `yaml:"flow"`
	Samples *samplesMarshall `yaml:"samples"`
}

type flowMarshall struct {
	NumT       *int     `yaml:"num_t" validate:"omitnil,gt=0"`
	NoiseScale *float64 `yaml:"noise_scale" validate:"omitnil,gte=0"`
	MinT       *float64 `yaml:"min_t" validate:"omitnil,gt=0,lt=1"`
}

type samplesMarshall struct {
	SamplesPerLength *int `yaml:"samples_per_length" validate:"omitnil,gt=0"`
	SeqPerSample     *int `yaml:"seq_per_sample" validate:"omitnil,gt=0"`
	MinLength        *int `yaml:"min_length" validate:"omitnil,gt=0"`
	MaxLength        *int `yaml:"max_length" validate:"omitnil,gt=0"`
	LengthStep       *int `yaml:"length_step" validate:"omitnil,gt=0"`
}

var ranges = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(samplesMarshall)
		if s.MinLength == nil || s.MaxLength == nil {
			return
		}
		if *s.MaxLength < *s.MinLength {
			sl.ReportError(s.MinLength, "min_length", "MinLength", "ltefield", "max_length")
		}
	}, samplesMarshall{})
	return v
}

// constraint describes a failed validator rule.
func constraint(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gt":
		return field + " > " + fe.Param()
	case "gte":
		return field + " >= " + fe.Param()
	case "lt":
		return field + " < " + fe.Param()
	case "lte":
		return field + " <= " + fe.Param()
	case "ltefield":
		return field + " <= " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "non-empty " + field
		}
		return field + " >= " + fe.Param()
	}
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// reader reads typed values from a tree, collecting problems.
type reader struct {
	// baseDir is where relative paths are resolved from.
	baseDir string

	errs    ValidationErrors
	notices []Notice
}

func (r *reader) missing(path string) {
	r.errs = append(r.errs, &FieldError{Kind: Missing, Path: path, Constraint: "required"})
}

func (r *reader) wrongType(path string, want string, node *yaml.Node) {
	r.errs = append(r.errs, &FieldError{
		Kind: WrongType, Path: path, Constraint: want, Actual: showNode(node),
	})
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil {
		return nil
	}
	// later one wins, when a key is duplicated.
	var found *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			found = mapping.Content[i+1]
		}
	}
	return found
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// section reads a mapping. It returns nil if it is absent or has a problem.
func (r *reader) section(parent *yaml.Node, ppath, key string, required bool) *yaml.Node {
	path := join(ppath, key)
	node := lookup(parent, key)
	if isNull(node) {
		if required {
			r.missing(path)
		}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		r.wrongType(path, "mapping", node)
		return nil
	}
	return node
}

// scalar finds a leaf node. It returns nil if it is absent or has a problem.
func (r *reader) scalar(parent *yaml.Node, ppath, key string, required bool) *yaml.Node {
	path := join(ppath, key)
	node := lookup(parent, key)
	if isNull(node) {
		if required {
			r.missing(path)
		}
		return nil
	}
	if node.Kind != yaml.ScalarNode {
		r.wrongType(path, "scalar", node)
		return nil
	}
	return node
}

func (r *reader) integer(parent *yaml.Node, ppath, key string) *int {
	node := r.scalar(parent, ppath, key, true)
	if node == nil {
		return nil
	}
	if node.ShortTag() != "!!int" {
		r.wrongType(join(ppath, key), "int", node)
		return nil
	}
	v := new(int)
	if err := node.Decode(v); err != nil {
		r.wrongType(join(ppath, key), "int", node)
		return nil
	}
	return v
}

func (r *reader) real(parent *yaml.Node, ppath, key string) *float64 {
	node := r.scalar(parent, ppath, key, true)
	if node == nil {
		return nil
	}
	if t := node.ShortTag(); t != "!!float" && t != "!!int" {
		r.wrongType(join(ppath, key), "real number", node)
		return nil
	}
	v := new(float64)
	if err := node.Decode(v); err != nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		r.wrongType(join(ppath, key), "finite real number", node)
		return nil
	}
	return v
}

// text reads a string.
//
// When it is optional, plain (not quoted) None is read as null, with a notice.
func (r *reader) text(parent *yaml.Node, ppath, key string, required bool) *string {
	node := r.scalar(parent, ppath, key, required)
	if node == nil {
		return nil
	}
	if node.ShortTag() != "!!str" {
		r.wrongType(join(ppath, key), "string", node)
		return nil
	}
	if !required && node.Style == 0 && (node.Value == "None" || node.Value == "none") {
		r.notices = append(r.notices, Notice{
			Path:    join(ppath, key),
			Message: "plain " + node.Value + " is read as null. Quote it to use it as a name, or write null",
		})
		return nil
	}
	v := node.Value
	return &v
}

// path reads a string as a filepath, and makes it absolute.
//
// Empty string is left as it is, to be reported by range checks.
func (r *reader) path(parent *yaml.Node, ppath, key string, required bool) *string {
	p := r.text(parent, ppath, key, required)
	if p == nil || *p == "" {
		return p
	}
	resolved, err := kpath.Resolve(*p, r.baseDir)
	if err != nil {
		r.errs = append(r.errs, &FieldError{
			Kind: WrongType, Path: join(ppath, key), Constraint: "resolvable path", Actual: show(p),
		})
		return nil
	}
	return &resolved
}

func (r *reader) read(root *yaml.Node) *configMarshall {
	cm := &configMarshall{}

	if exp := r.section(root, "", "experiment", false); exp != nil {
		cm.Experiment = &experimentMarshall{
			EvalDir: r.path(exp, "experiment", "eval_dir", false),
		}
	}

	inf := r.section(root, "", "inference", true)
	if inf == nil {
		return cm
	}
	const ip = "inference"
	im := &inferenceMarshall{
		Name:        r.text(inf, ip, "name", false),
		GPUID:       r.integer(inf, ip, "gpu_id"),
		Seed:        r.integer(inf, ip, "seed"),
		FullCkptDir: r.path(inf, ip, "full_ckpt_dir", true),
		PtHubDir:    r.path(inf, ip, "pt_hub_dir", true),
		PmpnnDir:    r.path(inf, ip, "pmpnn_dir", true),
		OutputDir:   r.path(inf, ip, "output_dir", true),
		WeightsPath: r.path(inf, ip, "weights_path", true),
	}
	cm.Inference = im

	if flow := r.section(inf, ip, "flow", true); flow != nil {
		const fp = ip + ".flow"
		im.Flow = &flowMarshall{
			NumT:       r.integer(flow, fp, "num_t"),
			NoiseScale: r.real(flow, fp, "noise_scale"),
			MinT:       r.real(flow, fp, "min_t"),
		}
	}

	if samples := r.section(inf, ip, "samples", true); samples != nil {
		const sp = ip + ".samples"
		im.Samples = &samplesMarshall{
			SamplesPerLength: r.integer(samples, sp, "samples_per_length"),
			SeqPerSample:     r.integer(samples, sp, "seq_per_sample"),
			MinLength:        r.integer(samples, sp, "min_length"),
			MaxLength:        r.integer(samples, sp, "max_length"),
			LengthStep:       r.integer(samples, sp, "length_step"),
		}
	}

	return cm
}
