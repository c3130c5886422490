package inference

import (
	"fmt"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/document"
	"gopkg.in/yaml.v3"
)

// Tree returns a copy of the validated tree.
//
// Path fields in it are absolute, and keys out of the schema are kept.
func (c *Config) Tree() *yaml.Node {
	return document.Expand(c.tree)
}

func (c *Config) node(path string) (*yaml.Node, error) {
	if path == "" {
		return c.tree, nil
	}
	current := c.tree
	for _, key := range strings.Split(path, ".") {
		if current.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchKey, path)
		}
		next := lookup(current, key)
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchKey, path)
		}
		current = next
	}
	return current, nil
}

// Get returns the value at the dotted path, like "inference.flow.num_t".
//
// Mappings are returned as map[string]any, and sequences as []any.
//
// It returns an error wrapping ErrNoSuchKey if nothing is there.
func (c *Config) Get(path string) (any, error) {
	node, err := c.node(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// GetInt returns the integer at the dotted path.
//
// It returns an error wrapping ErrNoSuchKey or ErrTypeMismatch.
func (c *Config) GetInt(path string) (int, error) {
	node, err := c.node(path)
	if err != nil {
		return 0, err
	}
	var v int
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" || node.Decode(&v) != nil {
		return 0, fmt.Errorf("%w: %s: want int, but %s", ErrTypeMismatch, path, showNode(node))
	}
	return v, nil
}

// GetFloat returns the real number at the dotted path. Integers are converted.
//
// It returns an error wrapping ErrNoSuchKey or ErrTypeMismatch.
func (c *Config) GetFloat(path string) (float64, error) {
	node, err := c.node(path)
	if err != nil {
		return 0, err
	}
	var v float64
	tag := node.ShortTag()
	if node.Kind != yaml.ScalarNode || (tag != "!!float" && tag != "!!int") || node.Decode(&v) != nil {
		return 0, fmt.Errorf("%w: %s: want real number, but %s", ErrTypeMismatch, path, showNode(node))
	}
	return v, nil
}

// GetString returns the string at the dotted path.
//
// It returns an error wrapping ErrNoSuchKey or ErrTypeMismatch. Null is a mismatch.
func (c *Config) GetString(path string) (string, error) {
	node, err := c.node(path)
	if err != nil {
		return "", err
	}
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", fmt.Errorf("%w: %s: want string, but %s", ErrTypeMismatch, path, showNode(node))
	}
	return node.Value, nil
}
