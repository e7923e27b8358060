// Package kpi loads business metric definitions from a YAML glossary and
// renders them for inclusion in SQL generation prompts.
package kpi

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoDefinitions is returned by Load when the glossary file does not exist.
const NoDefinitions = "No KPI definitions found."

// entry is one glossary item. A metric may be a bare string definition or
// a mapping with definition and description fields.
type entry struct {
	Definition  string `yaml:"definition"`
	Description string `yaml:"description"`
}

// Load reads the glossary at path and renders one "- name: definition" line
// per metric, sorted by name. A missing file is not an error; the caller
// gets a placeholder string suitable for prompt interpolation.
func Load(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NoDefinitions, nil
		}
		return "", fmt.Errorf("read kpi glossary: %w", err)
	}
	return Render(raw)
}

// Render parses YAML glossary bytes into prompt lines.
func Render(raw []byte) (string, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse kpi glossary: %w", err)
	}
	if len(doc) == 0 {
		return NoDefinitions, nil
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		node := doc[name]
		var e entry
		if err := node.Decode(&e); err == nil && e.Definition != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s  # %s", name, e.Definition, e.Description))
			continue
		}
		var plain string
		if err := node.Decode(&plain); err != nil {
			return "", fmt.Errorf("parse kpi %q: %w", name, err)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", name, plain))
	}
	return strings.Join(lines, "\n"), nil
}
