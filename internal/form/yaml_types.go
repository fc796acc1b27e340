package form

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const yamlNullTag = "!!null"

// --- Label YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for Label.
// Accepts a scalar, a mapping keyed by locale (order preserved), or a sequence.
func (l *Label) UnmarshalYAML(node *yaml.Node) error {
	lbl, err := labelFromYAML(node)
	if err != nil {
		return err
	}

	*l = lbl

	return nil
}

func labelFromYAML(node *yaml.Node) (Label, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == yamlNullTag {
			return Label{}, nil
		}

		return ScalarLabel(node.Value), nil

	case yaml.MappingNode:
		entries := make([]LocalizedEntry, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := labelFromYAML(node.Content[i+1])
			if err != nil {
				return Label{}, err
			}

			entries = append(entries, LocalizedEntry{Key: node.Content[i].Value, Value: value})
		}

		return LocalizedLabel(entries...), nil

	case yaml.SequenceNode:
		variants := make([]Label, 0, len(node.Content))

		for _, item := range node.Content {
			value, err := labelFromYAML(item)
			if err != nil {
				return Label{}, err
			}

			variants = append(variants, value)
		}

		return VariantLabel(variants...), nil

	case yaml.AliasNode:
		return labelFromYAML(node.Alias)

	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Label{}, nil
		}

		return labelFromYAML(node.Content[0])

	default:
		return Label{}, fmt.Errorf("expected string, mapping, or sequence label, got %v", node.Kind)
	}
}

// --- Flag YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for Flag.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar flag, got %v", node.Kind)
	}

	*f = ParseFlag(node.Value)

	return nil
}

// --- Text YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for Text.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %v", node.Kind)
	}

	if node.Tag == yamlNullTag {
		*t = ""
		return nil
	}

	*t = Text(node.Value)

	return nil
}

// --- ChoiceEntry YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for ChoiceEntry.
func (c *ChoiceEntry) UnmarshalYAML(node *yaml.Node) error {
	var raw rawChoice
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*c = raw.entry()

	return nil
}
