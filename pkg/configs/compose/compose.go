// Package compose resolves a configuration document and its composition directive
// into one merged tree.
//
// A document lists fragments to be merged in its "defaults" key, like
//
//	defaults:
//	  - base
//	  - _self_
//
// Fragments are merged in the listed order, later ones take precedence.
// "_self_" stands for the keys declared in the document itself.
// Fragments may have their own directive, which is resolved recursively.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/document"
	"github.com/briney/FoldFlow/pkg/configs/merge"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrFragmentNotFound = errors.New("compose: fragment not found")
var ErrCyclicComposition = errors.New("compose: cyclic composition")

// ErrStructuralConflict is same as merge.ErrStructuralConflict.
var ErrStructuralConflict = merge.ErrStructuralConflict

// CycleError tells a fragment refers itself transitively.
type CycleError struct {
	// Chain is fragment names from the entry document to the repeated fragment.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicComposition, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicComposition
}

// ResolveError tells resolution fails.
//
// It unwraps to the cause, so errors.Is and errors.As see through it.
type ResolveError struct {
	// Sources lists filepaths of documents which are read before the failure,
	// including one which cannot be parsed.
	Sources []string

	Err error
}

func (e *ResolveError) Error() string {
	return e.Err.Error()
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Composition is the result of resolution.
//
// Treat it as read-only.
type Composition struct {
	// Entry is the name of the entry document.
	Entry string

	// Tree is the merged mapping.
	Tree *yaml.Node

	// Fragments lists fragment names in the order they are merged.
	// Each name appears once per reference.
	Fragments []string

	// Sources lists filepaths of documents which are read. Each path appears once.
	Sources []string
}

type Resolver struct {
	store     Store
	overrides []string
	logger    logrus.FieldLogger
}

type Option func(*Resolver) *Resolver

// WithOverrides sets assignments, like "inference.flow.num_t=500",
// to be merged after the composition.
func WithOverrides(assignments ...string) Option {
	return func(r *Resolver) *Resolver {
		r.overrides = append(r.overrides, assignments...)
		return r
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Resolver) *Resolver {
		r.logger = logger
		return r
	}
}

func NewResolver(store Store, options ...Option) *Resolver {
	r := &Resolver{store: store, logger: logrus.StandardLogger()}
	for _, opt := range options {
		r = opt(r)
	}
	return r
}

// Resolve composes the entry document with its fragments.
//
// # Args
//
// - entry: name (or filepath, for DirStore) of the entry document.
//
// # Returns
//
// - *Composition
//
// - error: when resolution fails, there are no Composition.
// Errors after reading documents are wrapped with *ResolveError. Causes are:
//
//   - ErrFragmentNotFound (as *NotFoundError): a fragment is not found.
//
//   - ErrCyclicComposition (as *CycleError): a fragment refers itself transitively.
//
//   - ErrStructuralConflict (as *merge.Conflict): a mapping is merged with non-mapping.
//
//   - document.ErrInvalidDocument, document.ErrInvalidDirective: a document is malformed.
//
//   - ErrInvalidOverride: an override assignment is malformed.
func (r *Resolver) Resolve(entry string) (*Composition, error) {
	overrides, err := ParseOverrides(r.overrides...)
	if err != nil {
		return nil, err
	}

	w := &walker{
		store:  r.store,
		logger: r.logger.WithField("entry", entry),
		comp:   &Composition{Entry: entry},
		read:   map[string]struct{}{},
	}
	tree, err := w.compose(entry, "", nil)
	if err != nil {
		return nil, w.fail(err)
	}

	if overrides != nil {
		tree, err = merge.Merge(tree, overrides)
		if err != nil {
			return nil, w.fail(fmt.Errorf("%w (applying overrides)", err))
		}
	}

	w.comp.Tree = tree
	w.logger.WithField("fragments", w.comp.Fragments).Debug("composition resolved")
	return w.comp, nil
}

type frame struct {
	name string
	key  string
}

type walker struct {
	store  Store
	logger logrus.FieldLogger
	comp   *Composition
	read   map[string]struct{}
}

func (w *walker) fail(err error) error {
	return &ResolveError{Sources: append([]string{}, w.comp.Sources...), Err: err}
}

func (w *walker) compose(name string, from string, chain []frame) (*yaml.Node, error) {
	src, err := w.store.Locate(name, from)
	if err != nil {
		return nil, err
	}
	key := src.key()
	if _, ok := w.read[key]; !ok {
		w.read[key] = struct{}{}
		if src.Path != "" {
			w.comp.Sources = append(w.comp.Sources, src.Path)
		}
	}

	for i, f := range chain {
		if f.key != key {
			continue
		}
		names := []string{}
		for _, ff := range chain[i:] {
			names = append(names, ff.name)
		}
		return nil, &CycleError{Chain: append(names, name)}
	}

	doc, err := document.Parse(name, src.Path, src.Format, src.Content)
	if err != nil {
		return nil, err
	}
	w.logger.WithFields(logrus.Fields{
		"fragment": name, "path": src.Path, "defaults": doc.Defaults,
	}).Debug("fragment loaded")

	chain = append(chain, frame{name: name, key: key})
	next := src.Path
	if next == "" {
		next = name
	}

	acc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, d := range doc.Defaults {
		var part *yaml.Node
		if d == document.Self {
			part = doc.Body
			w.comp.Fragments = append(w.comp.Fragments, name)
		} else {
			p, err := w.compose(d, next, chain)
			if err != nil {
				return nil, err
			}
			part = p
		}

		merged, err := merge.Merge(acc, part)
		if err != nil {
			return nil, fmt.Errorf("%w (merging %s in %s)", err, d, name)
		}
		acc = merged
	}
	return acc, nil
}
