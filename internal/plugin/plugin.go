// Package plugin describes the host-framework plugins a site configuration can
// reference. A configuration holds an ordered list of entries, each an identifier
// tag plus an opaque options record; the options are only interpreted by the
// descriptor registered for that identifier.
package plugin

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type identifies the role a plugin plays in the host framework.
type Type string

const (
	// TypeTheme defines the primary rendering pipeline (content, authors, pages).
	TypeTheme Type = "theme"

	// TypeManifest produces the web-app manifest.
	TypeManifest Type = "manifest"

	// TypeAnalytics injects tracking code into rendered pages.
	TypeAnalytics Type = "analytics"

	// TypeUnknown is reported for identifiers without a registered descriptor.
	TypeUnknown Type = "unknown"
)

// IsValid returns true if the type can be used by a descriptor.
func (t Type) IsValid() bool {
	switch t {
	case TypeTheme, TypeManifest, TypeAnalytics:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Entry is one element of the ordered plugin list.
type Entry struct {
	Resolve string         `yaml:"resolve" json:"resolve"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Clone returns a deep copy of the entry so callers cannot share option maps.
// Nested maps come back keyed by strings, see NormalizeOptions.
func (e Entry) Clone() Entry {
	return Entry{Resolve: e.Resolve, Options: cloneMap(e.Options)}
}

// OptionsValidator checks a plugin's options record against the plugin's own schema.
type OptionsValidator func(options map[string]any) error

// Descriptor describes a known plugin.
type Descriptor struct {
	Name        string
	Type        Type
	Description string
	Validate    OptionsValidator
}

// validate checks if the descriptor itself is usable.
func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", d.Type)
	}
	return nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Type)
}

// OptionError reports a single invalid option. Key is the dotted path below the
// options record, empty when the record as a whole is malformed.
type OptionError struct {
	Key    string
	Reason string
}

func (e *OptionError) Error() string {
	if e.Key == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func optionErr(key, format string, args ...any) *OptionError {
	return &OptionError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// decodeOptions maps an untyped options record onto a typed options struct.
func decodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	data, err := yaml.Marshal(options)
	if err != nil {
		return optionErr("", "options cannot be encoded: %v", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return optionErr("", "options do not match the plugin schema: %v", err)
	}
	return nil
}

// NormalizeOptions returns a deep copy of options in which every nested map is
// a map[string]any. yaml.v3 decodes mappings with non-string keys (for example
// `sizes: {1: small}`) as map[any]any, which JSON cannot encode; their keys are
// rendered with fmt.Sprint.
func NormalizeOptions(options map[string]any) map[string]any {
	return cloneMap(options)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
