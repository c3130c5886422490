package document

import (
	"fmt"
	"sort"
	"time"

	"github.com/briney/FoldFlow/pkg/utils/yamler"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// parseTOML reads TOML into a tree, keeping types of TOML values as tags.
//
// Strings are double-quoted scalars, so that they are never read as other types.
// Keys of a table are sorted.
func parseTOML(content []byte) (*yaml.Node, error) {
	raw := map[string]any{}
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	return fromTOML(raw)
}

func fromTOML(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]yamler.MapEntry, 0, len(keys))
		for _, k := range keys {
			child, err := fromTOML(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			entries = append(entries, yamler.Entry(text(k), child))
		}
		return yamler.Map(entries...), nil
	case []any:
		items := make([]*yaml.Node, 0, len(v))
		for i, e := range v {
			child, err := fromTOML(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, child)
		}
		return yamler.Seq(items...), nil
	case string:
		return text(v), nil
	case bool:
		return yamler.Bool(v), nil
	case int64:
		return yamler.Int(v), nil
	case float64:
		return yamler.Float(v), nil
	case time.Time:
		return yamler.Text(v.Format(time.RFC3339Nano), yamler.WithTag("!!timestamp")), nil
	case toml.LocalDate, toml.LocalDateTime, toml.LocalTime:
		return text(fmt.Sprint(v)), nil
	}
	return nil, fmt.Errorf("unsupported value %T", value)
}

func text(s string) *yaml.Node {
	return yamler.Text(s, yamler.WithTag("!!str"), yamler.WithStyle(yaml.DoubleQuotedStyle))
}
