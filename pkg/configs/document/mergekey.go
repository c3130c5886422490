package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// mergeKeys applies YAML merge keys ("<<") in an expanded tree.
//
// Keys written in a mapping take precedence over merged ones.
// When "<<" has a sequence of mappings, earlier mappings take precedence.
// Merged keys are placed where "<<" was.
func mergeKeys(node *yaml.Node) (*yaml.Node, error) {
	for i, c := range node.Content {
		merged, err := mergeKeys(c)
		if err != nil {
			return nil, err
		}
		node.Content[i] = merged
	}
	if node.Kind != yaml.MappingNode {
		return node, nil
	}

	explicit := map[string]struct{}{}
	hasMerge := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		if isMergeKey(node.Content[i]) {
			hasMerge = true
			continue
		}
		explicit[node.Content[i].Value] = struct{}{}
	}
	if !hasMerge {
		return node, nil
	}

	content := make([]*yaml.Node, 0, len(node.Content))
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if !isMergeKey(k) {
			content = append(content, k, v)
			continue
		}

		sources := []*yaml.Node{v}
		if v.Kind == yaml.SequenceNode {
			sources = v.Content
		}
		for _, src := range sources {
			if src.Kind != yaml.MappingNode {
				return nil, fmt.Errorf(
					"%w: line %d: value of merge key should be a mapping or a sequence of mappings, but it is %s",
					ErrInvalidDocument, v.Line, KindName(src),
				)
			}
			for j := 0; j+1 < len(src.Content); j += 2 {
				key := src.Content[j].Value
				if _, ok := explicit[key]; ok {
					continue
				}
				explicit[key] = struct{}{}
				content = append(content, src.Content[j], src.Content[j+1])
			}
		}
	}
	node.Content = content
	return node, nil
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!merge"
}
