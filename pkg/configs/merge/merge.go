// Package merge deep-merges configuration trees.
//
// Rules:
//
//   - a mapping merges into a mapping, key by key, recursively.
//
//   - a leaf (scalar, sequence or null) replaces a leaf.
//
//   - a mapping and a leaf at the same key path conflict. It is never resolved silently.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/briney/FoldFlow/pkg/configs/document"
	"gopkg.in/yaml.v3"
)

var ErrStructuralConflict = errors.New("merge: structural conflict")

// Conflict describes where base and override disagree on structure.
type Conflict struct {
	// Path is dotted key path of the conflict. "(root)" for the root node.
	Path string

	// Base and Override are node kinds found at Path.
	Base     string
	Override string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf(
		"%s: %s: base has %s, but override has %s",
		ErrStructuralConflict, c.Path, c.Base, c.Override,
	)
}

func (c *Conflict) Is(target error) bool {
	return target == ErrStructuralConflict
}

// Merge returns a new tree, override merged into base.
//
// Neither base nor override are modified.
// Keys of base keep their order, and keys only in override are appended in their order.
//
// # Returns
//
// - *yaml.Node: merged tree.
//
// - error: *Conflict (errors.Is ErrStructuralConflict) if mapping and non-mapping meet.
// Then merged tree is nil.
func Merge(base, override *yaml.Node) (*yaml.Node, error) {
	return merge(nil, document.Expand(unwrap(base)), document.Expand(unwrap(override)))
}

func unwrap(node *yaml.Node) *yaml.Node {
	if node != nil && node.Kind == yaml.DocumentNode && 0 < len(node.Content) {
		return node.Content[0]
	}
	return node
}

// merge merges already-copied trees. It reuses nodes of its arguments.
func merge(path []string, base, override *yaml.Node) (*yaml.Node, error) {
	if base == nil {
		return override, nil
	}
	if override == nil {
		return base, nil
	}

	bm := base.Kind == yaml.MappingNode
	om := override.Kind == yaml.MappingNode
	switch {
	case bm && om:
	case !bm && !om:
		return override, nil
	default:
		return nil, &Conflict{
			Path:     Join(path),
			Base:     document.KindName(base),
			Override: document.KindName(override),
		}
	}

	merged := &yaml.Node{
		Kind:        yaml.MappingNode,
		Tag:         base.Tag,
		Style:       base.Style,
		Line:        base.Line,
		Column:      base.Column,
		HeadComment: base.HeadComment,
		LineComment: base.LineComment,
		FootComment: base.FootComment,
	}
	index := map[string]int{}
	for i := 0; i+1 < len(base.Content); i += 2 {
		k := base.Content[i]
		index[k.Value] = len(merged.Content) + 1
		merged.Content = append(merged.Content, k, base.Content[i+1])
	}

	for i := 0; i+1 < len(override.Content); i += 2 {
		k, v := override.Content[i], override.Content[i+1]
		at, ok := index[k.Value]
		if !ok {
			index[k.Value] = len(merged.Content) + 1
			merged.Content = append(merged.Content, k, v)
			continue
		}
		child, err := merge(append(path, k.Value), merged.Content[at], v)
		if err != nil {
			return nil, err
		}
		merged.Content[at] = child
	}

	return merged, nil
}

// Join builds dotted key path.
func Join(path []string) string {
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, ".")
}

// All merges trees from left to right. Later trees take precedence.
//
// When no trees are given, it returns an empty mapping.
func All(trees ...*yaml.Node) (*yaml.Node, error) {
	acc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, t := range trees {
		m, err := Merge(acc, t)
		if err != nil {
			return nil, err
		}
		acc = m
	}
	return acc, nil
}
