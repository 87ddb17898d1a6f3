package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// TemplateSpec is one template entry of the catalog file. A single entry is
// registered under an exact key for each program it lists.
type TemplateSpec struct {
	Channel  entity.Channel  `yaml:"channel"`
	Audience entity.Audience `yaml:"audience"`
	Programs []string        `yaml:"programs"`
	Subject  string          `yaml:"subject"`
	Body     string          `yaml:"body"`
}

// Catalog holds the program catalog, the sender fields and the raw templates.
type Catalog struct {
	Sender    map[string]string         `yaml:"sender"`
	Programs  map[string]entity.Program `yaml:"programs"`
	Templates []TemplateSpec            `yaml:"templates"`

	keys []string
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a YAML catalog from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler catálogo %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}
	if len(c.Programs) == 0 {
		return nil, fmt.Errorf("catalog has no programs")
	}
	if c.Sender == nil {
		c.Sender = map[string]string{}
	}

	for key, p := range c.Programs {
		if p.Name == "" {
			return nil, fmt.Errorf("program %q: name is required", key)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("program %q: price must be positive", key)
		}
		p.Key = key
		c.Programs[key] = p
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)

	for i, t := range c.Templates {
		if !t.Channel.Valid() {
			return nil, fmt.Errorf("template #%d: %w %q", i, entity.ErrUnsupportedChannel, t.Channel)
		}
		if !t.Audience.Valid() {
			return nil, fmt.Errorf("template #%d: %w %q", i, entity.ErrUnsupportedAudience, t.Audience)
		}
		if len(t.Programs) == 0 {
			return nil, fmt.Errorf("template #%d: programs is required", i)
		}
		for _, key := range t.Programs {
			if _, ok := c.Programs[key]; !ok {
				return nil, fmt.Errorf("template #%d: %w %q", i, entity.ErrUnknownProgram, key)
			}
		}
	}

	return &c, nil
}

func (c *Catalog) Program(key string) (entity.Program, bool) {
	p, ok := c.Programs[key]
	return p, ok
}

// ProgramKeys returns the program keys in lexical order.
func (c *Catalog) ProgramKeys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}
