package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/merge"
	"github.com/briney/FoldFlow/pkg/utils/yamler"
	"gopkg.in/yaml.v3"
)

var ErrInvalidOverride = errors.New("compose: invalid override")

// ParseOverrides builds a tree from assignments in form of "dotted.key.path=value".
//
// Values are read as YAML, so "500" is an integer, "null" is null and "[1, 2]" is a sequence.
// An empty value is an empty string.
//
// Assignments are merged in order. If no assignments are given, it returns nil.
func ParseOverrides(assignments ...string) (*yaml.Node, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	trees := make([]*yaml.Node, 0, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %s: should be KEY=VALUE", ErrInvalidOverride, a)
		}
		path := strings.Split(strings.TrimSpace(key), ".")
		for _, p := range path {
			if p == "" {
				return nil, fmt.Errorf("%w: %s: empty key", ErrInvalidOverride, a)
			}
		}

		leaf, err := scalar(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, a, err)
		}

		tree := leaf
		for i := len(path) - 1; 0 <= i; i-- {
			tree = yamler.Map(yamler.Entry(yamler.Text(path[i]), tree))
		}
		trees = append(trees, tree)
	}

	tree, err := merge.All(trees...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOverride, err)
	}
	return tree, nil
}

func scalar(value string) (*yaml.Node, error) {
	if strings.TrimSpace(value) == "" {
		return yamler.Text(value, yamler.WithTag("!!str")), nil
	}
	doc := new(yaml.Node)
	if err := yaml.Unmarshal([]byte(value), doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return yamler.Null(), nil
	}
	return doc.Content[0], nil
}
