package scanner

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFamily is returned when no dialect is registered for a
	// document-family label.
	ErrUnknownFamily = errors.New("unknown document family")

	// ErrUnknownDialect is returned when a family table names a dialect
	// that does not exist.
	ErrUnknownDialect = errors.New("unknown dialect")
)

// Dialects lists the built-in scanners by name.
var Dialects = map[string]Scanner{
	Linear.Name():  Linear,
	Tabular.Name(): Tabular,
	Legacy.Name():  Legacy,
}

var defaultFamilies = map[string]string{
	"A320":     "linear",
	"A330":     "linear",
	"A350":     "linear",
	"B737":     "linear",
	"B38M":     "linear",
	"B748":     "linear",
	"B74F":     "linear",
	"B767":     "linear",
	"B777":     "linear",
	"B787":     "linear",
	"A380":     "tabular",
	"B747-400": "legacy",
}

// Registry maps document-family labels to scanners. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]Scanner
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]Scanner)}
}

// DefaultRegistry returns a registry holding the built-in family table.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for family, dialect := range defaultFamilies {
		r.families[normalizeFamily(family)] = Dialects[dialect]
	}
	return r
}

type familiesFile struct {
	Families map[string]string `yaml:"families"`
}

// LoadRegistry returns the default registry extended with the family
// table in the YAML file at path. An empty path yields the defaults.
func LoadRegistry(path string) (*Registry, error) {
	r := DefaultRegistry()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read families file: %w", err)
	}
	var ff familiesFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse families file: %w", err)
	}
	for family, dialect := range ff.Families {
		if err := r.RegisterDialect(family, dialect); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register binds a family label to a scanner, replacing any earlier binding.
func (r *Registry) Register(family string, s Scanner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[normalizeFamily(family)] = s
}

// RegisterDialect binds a family label to a built-in dialect by name.
func (r *Registry) RegisterDialect(family, dialect string) error {
	s, ok := Dialects[strings.ToLower(strings.TrimSpace(dialect))]
	if !ok {
		return fmt.Errorf("register family %q: %w: %q", family, ErrUnknownDialect, dialect)
	}
	r.Register(family, s)
	return nil
}

// Lookup returns the scanner for a family label.
func (r *Registry) Lookup(family string) (Scanner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.families[normalizeFamily(family)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return s, nil
}

// Family is one row of the family table.
type Family struct {
	Family  string `json:"family"`
	Dialect string `json:"dialect"`
}

// Families returns the family table sorted by label.
func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Family, 0, len(r.families))
	for family, s := range r.families {
		out = append(out, Family{Family: family, Dialect: s.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Family < out[j].Family })
	return out
}

func normalizeFamily(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
