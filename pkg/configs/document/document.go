package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Self is the fragment name which stands for the keys declared in the document itself.
const Self = "_self_"

// DirectiveKey is the key of the composition directive in a document.
const DirectiveKey = "defaults"

var ErrInvalidDocument = errors.New("document: invalid document")
var ErrInvalidDirective = errors.New("document: invalid composition directive")
var ErrUnknownFormat = errors.New("document: unknown format")

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
	TOML Format = "toml"
)

// Extensions lists file extensions of fragment documents, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// FormatOf detects document format from the extension of filename.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// Document is a parsed configuration fragment.
type Document struct {
	// Name is the fragment name which the document is referred by.
	Name string

	// Path is where the document is read from. Empty for in-memory documents.
	Path string

	// Defaults is the composition order of this document.
	//
	// It always contains Self exactly once.
	// When the document declares no directive, it is just [Self].
	Defaults []string

	// Body is the mapping node of the document, without the directive.
	Body *yaml.Node
}

// Parse reads a fragment document.
//
// # Args
//
// - name: fragment name of the document.
//
// - path: where the content is read from. It is used only in messages.
//
// - format: format of content.
//
// - content: document text.
//
// # Returns
//
// - *Document: parsed document.
//
// - error: ErrInvalidDocument when the content cannot be parsed or its root is not a mapping,
// ErrInvalidDirective when the "defaults" key is malformed.
func Parse(name string, path string, format Format, content []byte) (*Document, error) {
	var root *yaml.Node
	var err error
	switch format {
	case YAML, JSON:
		root, err = parseYAML(content)
	case TOML:
		root, err = parseTOML(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, where(name, path), err)
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf(
			"%w: %s: root should be a mapping, but line %d is %s",
			ErrInvalidDocument, where(name, path), root.Line, KindName(root),
		)
	}

	doc := &Document{Name: name, Path: path, Defaults: []string{Self}}
	body := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Value != DirectiveKey {
			body.Content = append(body.Content, k, v)
			continue
		}
		defaults, err := directive(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, where(name, path))
		}
		doc.Defaults = defaults
	}
	doc.Body = body

	return doc, nil
}

func where(name, path string) string {
	if path == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, path)
}

func directive(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return []string{Self}, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf(
			"%w: %s should be a sequence, but line %d is %s",
			ErrInvalidDirective, DirectiveKey, node.Line, KindName(node),
		)
	}

	names := make([]string, 0, len(node.Content)+1)
	seen := map[string]struct{}{}
	for _, entry := range node.Content {
		if entry.Kind != yaml.ScalarNode || entry.ShortTag() != "!!str" {
			return nil, fmt.Errorf(
				"%w: line %d: entry should be a fragment name, but it is %s",
				ErrInvalidDirective, entry.Line, KindName(entry),
			)
		}
		name := strings.TrimSpace(entry.Value)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty fragment name", ErrInvalidDirective, entry.Line)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: line %d: %s is listed twice", ErrInvalidDirective, entry.Line, name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if _, ok := seen[Self]; !ok {
		names = append(names, Self)
	}
	return names, nil
}

func parseYAML(content []byte) (*yaml.Node, error) {
	doc := new(yaml.Node)
	if err := yaml.Unmarshal(content, doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// empty document is an empty mapping.
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	return mergeKeys(Expand(doc.Content[0]))
}

// Expand returns a deep copy of node, with aliases replaced by copies of their anchors.
func Expand(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return Expand(node.Alias)
	}
	cp := *node
	cp.Anchor = ""
	cp.Alias = nil
	if node.Content != nil {
		cp.Content = make([]*yaml.Node, len(node.Content))
		for i, c := range node.Content {
			cp.Content[i] = Expand(c)
		}
	}
	return &cp
}

// KindName describes the kind of node for messages.
func KindName(node *yaml.Node) string {
	if node == nil {
		return "nothing"
	}
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return "null"
		}
		return "scalar (" + node.ShortTag() + ")"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "unknown"
}
