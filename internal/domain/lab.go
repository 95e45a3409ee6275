package domain

import (
	"github.com/google/uuid"
)

// PhysicalState is the state of matter of a chemical.
type PhysicalState string

// States of matter.
const (
	StateSolid  PhysicalState = "solid"
	StateLiquid PhysicalState = "liquid"
	StateGas    PhysicalState = "gas"
)

// Chemical is a reagent that can be placed on the bench.
type Chemical struct {
	ID      string        `json:"id"      yaml:"id"`
	Name    string        `json:"name"    yaml:"name"`
	Formula string        `json:"formula" yaml:"formula"`
	Color   string        `json:"color"   yaml:"color"`
	State   PhysicalState `json:"state"   yaml:"state"`
	PH      float64       `json:"ph"      yaml:"ph"`
}

// Validate checks the chemical's fields.
func (c *Chemical) Validate() error {
	if c.ID == "" || c.Name == "" {
		return NewValidationError("chemical", "id and name are required")
	}
	switch c.State {
	case StateSolid, StateLiquid, StateGas:
	default:
		return NewValidationError("chemical.state", "unknown state "+string(c.State))
	}
	if c.PH < 0 || c.PH > 14 {
		return NewValidationError("chemical.ph", "must be between 0 and 14")
	}
	return nil
}

// ToolKind classifies lab equipment.
type ToolKind string

// Tool kinds.
const (
	ToolContainer  ToolKind = "container"
	ToolHeat       ToolKind = "heat"
	ToolInstrument ToolKind = "instrument"
)

// LabTool is a piece of equipment that can be placed on the bench.
type LabTool struct {
	ID          string   `json:"id"                  yaml:"id"`
	Name        string   `json:"name"                yaml:"name"`
	Icon        string   `json:"icon"                yaml:"icon"`
	Description string   `json:"description"         yaml:"description"`
	Kind        ToolKind `json:"type"                yaml:"type"`
	VolumeML    int      `json:"volume,omitempty"    yaml:"volume"`
}

// Validate checks the tool's fields.
func (t *LabTool) Validate() error {
	if t.ID == "" || t.Name == "" {
		return NewValidationError("tool", "id and name are required")
	}
	switch t.Kind {
	case ToolContainer, ToolHeat, ToolInstrument:
	default:
		return NewValidationError("tool.type", "unknown kind "+string(t.Kind))
	}
	return nil
}

// ItemKind says which catalog a bench item came from.
type ItemKind string

// Bench item kinds.
const (
	ItemTool     ItemKind = "tool"
	ItemChemical ItemKind = "chemical"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == ItemTool || k == ItemChemical
}

// BenchItem is one placement of a tool or chemical on the bench. Its
// InstanceID distinguishes repeated placements of the same catalog entry.
type BenchItem struct {
	InstanceID uuid.UUID `json:"instance_id"`
	Kind       ItemKind  `json:"kind"`
	CatalogID  string    `json:"catalog_id"`
	Name       string    `json:"name"`
	Color      string    `json:"color,omitempty"`
}

// NewBenchItem creates a bench item with a fresh instance ID.
func NewBenchItem(kind ItemKind, catalogID, name, color string) (BenchItem, error) {
	if !kind.Valid() {
		return BenchItem{}, NewValidationError("kind", "must be tool or chemical")
	}
	if catalogID == "" || name == "" {
		return BenchItem{}, NewValidationError("catalog_id", "cannot be empty")
	}
	return BenchItem{
		InstanceID: uuid.New(),
		Kind:       kind,
		CatalogID:  catalogID,
		Name:       name,
		Color:      color,
	}, nil
}
