package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

// documentField is reported when a decode failure cannot be tied to a key.
const documentField = "document"

var yamlLinePrefix = regexp.MustCompile(`^line (\d+): (.*)$`)

// decode strictly unmarshals a configuration document. Syntax errors are
// config-category errors; unknown keys and wrongly typed values are validation
// errors naming the offending field.
func decode(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ferrors.ConfigError("configuration is empty").Build()
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
			return nil, fieldDecodeError(data, typeErr.Errors[0])
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}

	for i := range cfg.Plugins {
		cfg.Plugins[i].Options = plugin.NormalizeOptions(cfg.Plugins[i].Options)
	}
	return &cfg, nil
}

// fieldDecodeError turns one yaml.v3 type error line ("line 10: cannot
// unmarshal ...") into a validation error for the key on that line.
func fieldDecodeError(data []byte, msg string) error {
	m := yamlLinePrefix.FindStringSubmatch(msg)
	if m == nil {
		return invalidField(documentField, "%s", msg)
	}
	line, _ := strconv.Atoi(m[1])
	field := fieldAtLine(keyLines(data), line)

	reason := m[2]
	if strings.Contains(reason, "not found in type") {
		return invalidField(field, "is not a recognized field")
	}
	return invalidField(field, "has the wrong type (%s)", reason)
}

// keyLines maps source lines to the field path of the key or scalar on them.
// The first path recorded for a line wins, so a key shadows its inline value.
func keyLines(data []byte) map[int]string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}

	paths := make(map[int]string)
	record := func(line int, path string) {
		if _, ok := paths[line]; !ok && path != "" {
			paths[line] = path
		}
	}

	var walk func(n *yaml.Node, path string)
	walk = func(n *yaml.Node, path string) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(c, path)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key, value := n.Content[i], n.Content[i+1]
				child := key.Value
				if path != "" {
					child = path + "." + key.Value
				}
				record(key.Line, child)
				walk(value, child)
			}
		case yaml.SequenceNode:
			for i, c := range n.Content {
				walk(c, fmt.Sprintf("%s[%d]", path, i))
			}
		default:
			record(n.Line, path)
		}
	}
	walk(&root, "")
	return paths
}

// fieldAtLine returns the path on line, or on the closest line above it.
func fieldAtLine(paths map[int]string, line int) string {
	if p, ok := paths[line]; ok {
		return p
	}
	lines := make([]int, 0, len(paths))
	for l := range paths {
		if l < line {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return documentField
	}
	sort.Ints(lines)
	return paths[lines[len(lines)-1]]
}
