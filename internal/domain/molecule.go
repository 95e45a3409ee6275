package domain

import "fmt"

// Element is one of the fixed set of elements the catalog can draw.
type Element string

// Supported elements.
const (
	ElementH  Element = "H"
	ElementC  Element = "C"
	ElementO  Element = "O"
	ElementN  Element = "N"
	ElementCl Element = "Cl"
	ElementNa Element = "Na"
)

// Elements lists the supported elements in display order.
var Elements = []Element{ElementH, ElementC, ElementO, ElementN, ElementCl, ElementNa}

// Valid reports whether e is a supported element.
func (e Element) Valid() bool {
	for _, known := range Elements {
		if e == known {
			return true
		}
	}
	return false
}

// ElementStyle is the rendering hint a client uses for an element.
type ElementStyle struct {
	Element Element `json:"element" yaml:"element"`
	Color   string  `json:"color"   yaml:"color"`
	Radius  float64 `json:"radius"  yaml:"radius"`
}

// BondOrder is the multiplicity of a bond.
type BondOrder string

// Bond orders.
const (
	BondSingle BondOrder = "single"
	BondDouble BondOrder = "double"
	BondTriple BondOrder = "triple"
)

// Valid reports whether o is a known bond order.
func (o BondOrder) Valid() bool {
	switch o {
	case BondSingle, BondDouble, BondTriple:
		return true
	default:
		return false
	}
}

// MoleculeCategory tags a molecule for browsing.
type MoleculeCategory string

// Molecule categories.
const (
	CategoryOrganic   MoleculeCategory = "Organic"
	CategoryInorganic MoleculeCategory = "Inorganic"
	CategoryAcids     MoleculeCategory = "Acids"
	CategoryBases     MoleculeCategory = "Bases"
)

// Valid reports whether c is a known category.
func (c MoleculeCategory) Valid() bool {
	switch c {
	case CategoryOrganic, CategoryInorganic, CategoryAcids, CategoryBases:
		return true
	default:
		return false
	}
}

// Atom is a positioned atom inside a molecule.
type Atom struct {
	ID       string     `json:"id"       yaml:"id"`
	Element  Element    `json:"type"     yaml:"type"`
	Position [3]float64 `json:"position" yaml:"position"`
}

// Bond connects two atoms of the same molecule.
type Bond struct {
	From  string    `json:"from" yaml:"from"`
	To    string    `json:"to"   yaml:"to"`
	Order BondOrder `json:"type" yaml:"type"`
}

// Molecule is an immutable catalog entry.
type Molecule struct {
	ID          string           `json:"id"          yaml:"id"`
	Name        string           `json:"name"        yaml:"name"`
	Formula     string           `json:"formula"     yaml:"formula"`
	Description string           `json:"description" yaml:"description"`
	Category    MoleculeCategory `json:"category"    yaml:"category"`
	Atoms       []Atom           `json:"atoms"       yaml:"atoms"`
	Bonds       []Bond           `json:"bonds"       yaml:"bonds"`
}

// Validate checks identity fields, atom elements and that every bond
// references atoms of this molecule.
func (m *Molecule) Validate() error {
	if m.ID == "" {
		return NewValidationError("molecule.id", "cannot be empty")
	}
	if m.Name == "" {
		return NewValidationError("molecule.name", fmt.Sprintf("cannot be empty (molecule %s)", m.ID))
	}
	if !m.Category.Valid() {
		return NewValidationError("molecule.category",
			fmt.Sprintf("unknown category %q (molecule %s)", m.Category, m.ID))
	}
	if len(m.Atoms) == 0 {
		return NewValidationError("molecule.atoms", fmt.Sprintf("molecule %s has no atoms", m.ID))
	}

	atomIDs := make(map[string]struct{}, len(m.Atoms))
	for _, a := range m.Atoms {
		if a.ID == "" {
			return NewValidationError("atom.id", fmt.Sprintf("empty atom id in molecule %s", m.ID))
		}
		if _, dup := atomIDs[a.ID]; dup {
			return NewValidationError("atom.id", fmt.Sprintf("duplicate atom %s in molecule %s", a.ID, m.ID))
		}
		if !a.Element.Valid() {
			return NewValidationError("atom.type",
				fmt.Sprintf("unsupported element %q in molecule %s", a.Element, m.ID))
		}
		atomIDs[a.ID] = struct{}{}
	}

	for _, b := range m.Bonds {
		if _, ok := atomIDs[b.From]; !ok {
			return NewValidationError("bond.from",
				fmt.Sprintf("atom %s not in molecule %s", b.From, m.ID))
		}
		if _, ok := atomIDs[b.To]; !ok {
			return NewValidationError("bond.to",
				fmt.Sprintf("atom %s not in molecule %s", b.To, m.ID))
		}
		if b.From == b.To {
			return NewValidationError("bond", fmt.Sprintf("self bond on %s in molecule %s", b.From, m.ID))
		}
		if !b.Order.Valid() {
			return NewValidationError("bond.type",
				fmt.Sprintf("unknown bond order %q in molecule %s", b.Order, m.ID))
		}
	}
	return nil
}
