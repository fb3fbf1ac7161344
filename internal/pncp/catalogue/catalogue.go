package catalogue

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

//go:embed modalities.yaml
var defaultFile []byte

type Modality struct {
	Code int    `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

type file struct {
	Modalities []Modality `yaml:"modalities"`
	Recent     []int      `yaml:"recent"`
}

// Catalogue maps modality codes to names and holds the default recency
// partitions. It is read-only after construction.
type Catalogue struct {
	modalities []Modality
	names      map[int]string
	recent     []int
}

// Default returns the catalogue compiled into the binary.
func Default() *Catalogue {
	c, err := Parse(defaultFile)
	if err != nil {
		panic(fmt.Sprintf("catalogue: embedded modalities.yaml: %v", err))
	}
	return c
}

// Load reads a catalogue from path, or returns Default when path is empty.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modalities file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid modalities file %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalogue, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Modalities) == 0 {
		return nil, fmt.Errorf("no modalities defined")
	}

	c := &Catalogue{
		modalities: make([]Modality, 0, len(f.Modalities)),
		names:      make(map[int]string, len(f.Modalities)),
	}
	for _, m := range f.Modalities {
		if m.Code <= 0 || m.Name == "" {
			return nil, fmt.Errorf("modality %d: code must be positive and name non-empty", m.Code)
		}
		if _, dup := c.names[m.Code]; dup {
			return nil, fmt.Errorf("modality %d defined twice", m.Code)
		}
		c.names[m.Code] = m.Name
		c.modalities = append(c.modalities, m)
	}
	slices.SortFunc(c.modalities, func(a, b Modality) int { return a.Code - b.Code })

	if err := c.SetRecent(f.Recent); err != nil {
		return nil, err
	}
	return c, nil
}

// SetRecent replaces the default recency partitions. Every code must be in
// the catalogue.
func (c *Catalogue) SetRecent(codes []int) error {
	if len(codes) == 0 {
		return fmt.Errorf("recent modality list is empty")
	}
	for _, code := range codes {
		if !c.Known(code) {
			return fmt.Errorf("recent modality %d is not in the catalogue", code)
		}
	}
	c.recent = slices.Clone(codes)
	return nil
}

func (c *Catalogue) Known(code int) bool {
	_, ok := c.names[code]
	return ok
}

func (c *Catalogue) Name(code int) (string, bool) {
	name, ok := c.names[code]
	return name, ok
}

// All lists every modality ordered by code.
func (c *Catalogue) All() []Modality {
	return slices.Clone(c.modalities)
}

func (c *Catalogue) Recent() []int {
	return slices.Clone(c.recent)
}

// Annotate fills ModalityName on records that arrived without one.
func (c *Catalogue) Annotate(records []types.Record) {
	for i := range records {
		if records[i].ModalityName != "" {
			continue
		}
		if name, ok := c.names[records[i].ModalityCode]; ok {
			records[i].ModalityName = name
		}
	}
}
