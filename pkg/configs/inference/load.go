package inference

import (
	"context"

	"github.com/briney/FoldFlow/pkg/configs/compose"
	"github.com/sirupsen/logrus"
)

type options struct {
	baseDir    string
	searchPath []string
	overrides  []string
	store      compose.Store
	logger     logrus.FieldLogger
}

type Option func(*options) *options

// WithBaseDir sets the directory which relative paths in configuration are based on.
//
// Default is the working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) *options {
		o.baseDir = dir
		return o
	}
}

// WithSearchPath adds directories where fragments are looked for,
// after the directory of the referring document.
func WithSearchPath(dirs ...string) Option {
	return func(o *options) *options {
		o.searchPath = append(o.searchPath, dirs...)
		return o
	}
}

// WithOverrides adds assignments, like "inference.flow.num_t=500".
func WithOverrides(assignments ...string) Option {
	return func(o *options) *options {
		o.overrides = append(o.overrides, assignments...)
		return o
	}
}

// WithStore replaces where documents are located. WithSearchPath is ignored then.
func WithStore(store compose.Store) Option {
	return func(o *options) *options {
		o.store = store
		return o
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) *options {
		o.logger = logger
		return o
	}
}

func newOptions(opts ...Option) *options {
	o := &options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}

func (o *options) resolver() *compose.Resolver {
	store := o.store
	if store == nil {
		store = compose.DirStore{SearchPath: o.searchPath}
	}
	return compose.NewResolver(
		store,
		compose.WithOverrides(o.overrides...),
		compose.WithLogger(o.logger),
	)
}

// Load resolves the entry document and validates it.
//
// # Args
//
// - entry: filepath (or name, when WithStore is given) of the entry document.
//
// # Returns
//
// - *Config
//
// - error: resolution errors of compose.Resolver.Resolve, or ValidationErrors.
func Load(entry string, opts ...Option) (*Config, error) {
	o := newOptions(opts...)
	comp, err := o.resolver().Resolve(entry)
	if err != nil {
		return nil, err
	}
	return o.validate(comp)
}

func (o *options) validate(comp *compose.Composition) (*Config, error) {
	conf, err := Validate(comp.Tree, WithBaseDir(o.baseDir))
	if err != nil {
		return nil, err
	}
	for _, n := range conf.notices {
		o.logger.WithFields(logrus.Fields{"entry": comp.Entry, "field": n.Path}).Warn(n.Message)
	}
	return conf, nil
}

// Loader loads configurations, caching resolved compositions.
//
// A cached composition is dropped when one of its source files is modified.
// Loader is safe for concurrent use.
type Loader struct {
	opts  *options
	cache *compose.Cache
}

// NewLoader creates a Loader. Source files are watched until ctx is done.
func NewLoader(ctx context.Context, opts ...Option) *Loader {
	o := newOptions(opts...)
	return &Loader{opts: o, cache: compose.NewCache(ctx, o.resolver())}
}

// Load is same as package-level Load, but compositions are cached.
func (l *Loader) Load(entry string) (*Config, error) {
	comp, err := l.cache.Get(entry)
	if err != nil {
		return nil, err
	}
	return l.opts.validate(comp)
}
