package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/document"
	kpath "github.com/briney/FoldFlow/pkg/utils/path"
)

// Source is a located fragment document.
type Source struct {
	// Name is the fragment name which is requested.
	Name string

	// Path is absolute filepath of the document.
	//
	// It is empty when the document does not live in the filesystem.
	Path string

	Format  document.Format
	Content []byte
}

// identity of the document, used to detect cyclic composition.
func (s Source) key() string {
	if s.Path != "" {
		return "file:" + s.Path
	}
	return "name:" + s.Name
}

// Store locates fragment documents.
type Store interface {
	// Locate finds the fragment named `name`.
	//
	// # Args
	//
	// - name: fragment name, as written in a composition directive.
	//
	// - from: Path of the document which refers the fragment.
	// Empty when name is the entry document.
	//
	// # Returns
	//
	// - Source
	//
	// - error: NotFoundError (errors.Is ErrFragmentNotFound) if there are no such fragment.
	Locate(name string, from string) (Source, error)
}

// DirStore locates fragments in the filesystem.
//
// A fragment is looked up in the directory of the referring document first,
// and then each directory in SearchPath.
// The entry document is looked up as a filepath first.
//
// When name has no known extension, candidates are name + each of document.Extensions.
type DirStore struct {
	SearchPath []string
}

var _ Store = DirStore{}

func (ds DirStore) Locate(name string, from string) (Source, error) {
	dirs := []string{}
	if filepath.IsAbs(name) {
		dirs = append(dirs, "")
	} else {
		if from != "" {
			dirs = append(dirs, filepath.Dir(from))
		} else {
			dirs = append(dirs, ".")
		}
		dirs = append(dirs, ds.SearchPath...)
	}

	names := []string{name}
	if _, err := document.FormatOf(name); err != nil {
		names = names[:0]
		for _, ext := range document.Extensions {
			names = append(names, name+ext)
		}
	}

	tried := []string{}
	for _, dir := range dirs {
		for _, n := range names {
			candidate := n
			if dir != "" {
				candidate = filepath.Join(dir, n)
			}
			abs, err := kpath.Resolve(candidate, "")
			if err != nil {
				return Source{}, err
			}
			tried = append(tried, abs)

			s, err := os.Stat(abs)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return Source{}, fmt.Errorf("compose: %s: %w", abs, err)
			}
			if !s.Mode().IsRegular() {
				continue
			}

			content, err := os.ReadFile(abs)
			if err != nil {
				return Source{}, fmt.Errorf("compose: read %s: %w", abs, err)
			}
			format, err := document.FormatOf(abs)
			if err != nil {
				return Source{}, err
			}
			return Source{Name: name, Path: abs, Format: format, Content: content}, nil
		}
	}

	return Source{}, &NotFoundError{Name: name, From: from, Tried: tried}
}

// MapStore holds YAML fragment documents in memory, keyed by fragment name.
//
// Fragments refer each other by name only.
type MapStore map[string]string

var _ Store = MapStore{}

func (ms MapStore) Locate(name string, from string) (Source, error) {
	content, ok := ms[name]
	if !ok {
		return Source{}, &NotFoundError{Name: name, From: from}
	}

	format := document.YAML
	if f, err := document.FormatOf(name); err == nil {
		format = f
	}
	return Source{Name: name, Format: format, Content: []byte(content)}, nil
}

// NotFoundError tells a fragment cannot be located.
type NotFoundError struct {
	Name string

	// From is the document which refers the fragment.
	From string

	// Tried lists the candidates which are looked up.
	Tried []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrFragmentNotFound, e.Name)
	if e.From != "" {
		msg += fmt.Sprintf(" (required by %s)", e.From)
	}
	if len(e.Tried) != 0 {
		msg += "; tried: " + strings.Join(e.Tried, ", ")
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrFragmentNotFound
}
