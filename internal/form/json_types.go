package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// --- Label JSON methods ---

// UnmarshalJSON implements custom JSON unmarshaling for Label.
// Accepts a string, a locale-keyed object (key order is preserved),
// an array of variants, null, or any other scalar (kept as text).
func (l *Label) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	lbl, err := decodeJSONLabel(dec)
	if err != nil {
		return fmt.Errorf("decoding label: %w", err)
	}

	*l = lbl

	return nil
}

// decodeJSONLabel reads one JSON value from dec. Objects are walked token by
// token because map decoding would lose the source key order.
func decodeJSONLabel(dec *json.Decoder) (Label, error) {
	tok, err := dec.Token()
	if err != nil {
		return Label{}, err
	}

	switch v := tok.(type) {
	case nil:
		return Label{}, nil
	case string:
		return ScalarLabel(v), nil
	case json.Number:
		return ScalarLabel(v.String()), nil
	case bool:
		return ScalarLabel(strconv.FormatBool(v)), nil
	case json.Delim:
		switch v {
		case '{':
			var entries []LocalizedEntry

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Label{}, err
				}

				key, _ := keyTok.(string)

				value, err := decodeJSONLabel(dec)
				if err != nil {
					return Label{}, err
				}

				entries = append(entries, LocalizedEntry{Key: key, Value: value})
			}

			if _, err := dec.Token(); err != nil {
				return Label{}, err
			}

			return LocalizedLabel(entries...), nil

		case '[':
			var variants []Label

			for dec.More() {
				value, err := decodeJSONLabel(dec)
				if err != nil {
					return Label{}, err
				}

				variants = append(variants, value)
			}

			if _, err := dec.Token(); err != nil {
				return Label{}, err
			}

			return VariantLabel(variants...), nil
		}
	}

	return Label{}, fmt.Errorf("unexpected token %v", tok)
}

// --- Flag JSON methods ---

// Flag is a lenient boolean.
type Flag bool

// UnmarshalJSON implements custom JSON unmarshaling for Flag.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		*f = ParseFlag(t)
	case float64:
		*f = t != 0
	default:
		*f = false
	}

	return nil
}

// ParseFlag interprets the textual spellings of true used by form authors.
func ParseFlag(s string) Flag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "true()", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// --- ChoiceEntry JSON methods ---

// rawChoice mirrors a choices row as stored in asset JSON and YAML snapshots.
type rawChoice struct {
	ListID Text  `json:"list_name" yaml:"list_name"`
	Value  Text  `json:"name" yaml:"name"`
	Label  Label `json:"label" yaml:"label"`
	Labels Label `json:"labels" yaml:"labels"`
}

func (r rawChoice) entry() ChoiceEntry {
	lbl := r.Label
	if lbl.IsZero() {
		lbl = r.Labels
	}

	return ChoiceEntry{
		ListID: strings.TrimSpace(string(r.ListID)),
		Value:  strings.TrimSpace(string(r.Value)),
		Label:  lbl,
	}
}

// UnmarshalJSON implements custom JSON unmarshaling for ChoiceEntry.
// The label is read from "label", falling back to "labels".
func (c *ChoiceEntry) UnmarshalJSON(data []byte) error {
	var raw rawChoice
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = raw.entry()

	return nil
}

// --- Text JSON methods ---

// Text is a string that also accepts numbers and booleans.
type Text string

// UnmarshalJSON implements custom JSON unmarshaling for Text.
func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch s := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(s)
	case json.Number:
		*t = Text(s.String())
	case bool:
		*t = Text(strconv.FormatBool(s))
	default:
		return fmt.Errorf("expected string or scalar, got %T", v)
	}

	return nil
}
