package version

import (
	"embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed dialects/*.yaml
var dialectFS embed.FS

// Legacy is the dialect name of manifests without an eclipse instruction.
const Legacy = "legacy"

// Dialect describes what a manifest schema version defines.
type Dialect struct {
	Version      string              `yaml:"version"`
	Description  string              `yaml:"description"`
	DefaultMatch string              `yaml:"defaultMatch"`
	Sections     []string            `yaml:"sections"`
	Attributes   map[string][]string `yaml:"attributes"`
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Dialect)
)

// LoadDialect loads the dialect for a schema version. The empty string
// selects the legacy dialect.
func LoadDialect(schema string) (*Dialect, error) {
	name := schema
	if name == "" {
		name = Legacy
	}

	cacheMu.RLock()
	if d, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return d, nil
	}
	cacheMu.RUnlock()

	data, err := dialectFS.ReadFile("dialects/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("dialect %q not found: %w", name, err)
	}

	var d Dialect
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing dialect %q: %w", name, err)
	}

	cacheMu.Lock()
	cache[name] = &d
	cacheMu.Unlock()

	return &d, nil
}

// AvailableDialects returns the names of all embedded dialects.
func AvailableDialects() ([]string, error) {
	entries, err := dialectFS.ReadDir("dialects")
	if err != nil {
		return nil, fmt.Errorf("reading dialects directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// KnowsSection reports whether tag is a defined child of the root.
func (d *Dialect) KnowsSection(tag string) bool {
	return slices.Contains(d.Sections, tag)
}

// KnowsAttribute reports whether attr is defined on element.
func (d *Dialect) KnowsAttribute(element, attr string) bool {
	return slices.Contains(d.Attributes[element], attr)
}
