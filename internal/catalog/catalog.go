// Package catalog holds the static reference data of the lab: molecules,
// chemicals, lab tools, quiz topics and per-element rendering hints. The data
// ships embedded as YAML and is parsed and validated once at startup.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultData []byte

var (
	// ErrMoleculeNotFound is returned when a molecule id is not in the catalog.
	ErrMoleculeNotFound = errors.New("molecule not found")

	// ErrChemicalNotFound is returned when a chemical id is not in the catalog.
	ErrChemicalNotFound = errors.New("chemical not found")

	// ErrToolNotFound is returned when a tool id is not in the catalog.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidCatalog is returned when catalog data fails to parse or validate.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

type document struct {
	Elements  []domain.ElementStyle `yaml:"elements"`
	Molecules []domain.Molecule     `yaml:"molecules"`
	Chemicals []domain.Chemical     `yaml:"chemicals"`
	Tools     []domain.LabTool      `yaml:"tools"`
	Topics    []string              `yaml:"topics"`
}

// Catalog is an immutable, validated view of the reference data.
// All accessors return copies of slices so callers cannot alter it.
type Catalog struct {
	doc       document
	molecules map[string]int
	chemicals map[string]int
	tools     map[string]int
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// MustDefault is Default for program initialisation and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		doc:       doc,
		molecules: make(map[string]int, len(doc.Molecules)),
		chemicals: make(map[string]int, len(doc.Chemicals)),
		tools:     make(map[string]int, len(doc.Tools)),
	}
	if err := c.index(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return c, nil
}

func (c *Catalog) index() error {
	if len(c.doc.Molecules) == 0 {
		return errors.New("at least one molecule is required")
	}
	for i := range c.doc.Molecules {
		m := &c.doc.Molecules[i]
		if err := m.Validate(); err != nil {
			return err
		}
		if _, dup := c.molecules[m.ID]; dup {
			return fmt.Errorf("duplicate molecule %s", m.ID)
		}
		c.molecules[m.ID] = i
	}

	for i := range c.doc.Chemicals {
		ch := &c.doc.Chemicals[i]
		if err := ch.Validate(); err != nil {
			return err
		}
		if _, dup := c.chemicals[ch.ID]; dup {
			return fmt.Errorf("duplicate chemical %s", ch.ID)
		}
		c.chemicals[ch.ID] = i
	}

	for i := range c.doc.Tools {
		t := &c.doc.Tools[i]
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := c.tools[t.ID]; dup {
			return fmt.Errorf("duplicate tool %s", t.ID)
		}
		c.tools[t.ID] = i
	}

	for _, es := range c.doc.Elements {
		if !es.Element.Valid() {
			return fmt.Errorf("unsupported element %q", es.Element)
		}
	}
	return nil
}

// Molecules returns every molecule in catalog order.
func (c *Catalog) Molecules() []domain.Molecule {
	return append([]domain.Molecule(nil), c.doc.Molecules...)
}

// DefaultMolecule is the first catalog molecule, selected when a viewer opens.
func (c *Catalog) DefaultMolecule() domain.Molecule {
	return c.doc.Molecules[0]
}

// Molecule looks up a molecule by id.
func (c *Catalog) Molecule(id string) (domain.Molecule, error) {
	i, ok := c.molecules[id]
	if !ok {
		return domain.Molecule{}, fmt.Errorf("%w: %s", ErrMoleculeNotFound, id)
	}
	return c.doc.Molecules[i], nil
}

// Chemicals returns every chemical in catalog order.
func (c *Catalog) Chemicals() []domain.Chemical {
	return append([]domain.Chemical(nil), c.doc.Chemicals...)
}

// Chemical looks up a chemical by id.
func (c *Catalog) Chemical(id string) (domain.Chemical, error) {
	i, ok := c.chemicals[id]
	if !ok {
		return domain.Chemical{}, fmt.Errorf("%w: %s", ErrChemicalNotFound, id)
	}
	return c.doc.Chemicals[i], nil
}

// Tools returns every lab tool in catalog order.
func (c *Catalog) Tools() []domain.LabTool {
	return append([]domain.LabTool(nil), c.doc.Tools...)
}

// Tool looks up a lab tool by id.
func (c *Catalog) Tool(id string) (domain.LabTool, error) {
	i, ok := c.tools[id]
	if !ok {
		return domain.LabTool{}, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return c.doc.Tools[i], nil
}

// Topics returns the standard quiz topics.
func (c *Catalog) Topics() []string {
	return append([]string(nil), c.doc.Topics...)
}

// Elements returns the per-element rendering hints.
func (c *Catalog) Elements() []domain.ElementStyle {
	return append([]domain.ElementStyle(nil), c.doc.Elements...)
}

// BenchItem resolves a catalog entry into a fresh bench item.
func (c *Catalog) BenchItem(kind domain.ItemKind, id string) (domain.BenchItem, error) {
	switch kind {
	case domain.ItemChemical:
		ch, err := c.Chemical(id)
		if err != nil {
			return domain.BenchItem{}, err
		}
		return domain.NewBenchItem(kind, ch.ID, ch.Name, ch.Color)
	case domain.ItemTool:
		t, err := c.Tool(id)
		if err != nil {
			return domain.BenchItem{}, err
		}
		return domain.NewBenchItem(kind, t.ID, t.Name, "")
	default:
		return domain.BenchItem{}, domain.NewValidationError("kind", "must be tool or chemical")
	}
}
