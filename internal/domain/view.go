package domain

import "strings"

// View is a top-level screen of the application.
type View string

// Views.
const (
	ViewDashboard View = "DASHBOARD"
	ViewMolecules View = "MOLECULES"
	ViewLab       View = "LAB"
	ViewTheory    View = "THEORY"
)

// Views lists every view in navigation order.
var Views = []View{ViewDashboard, ViewMolecules, ViewLab, ViewTheory}

// ParseView converts a case-insensitive name into a View.
func ParseView(name string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(name)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", NewValidationError("view", "unknown view "+name)
}

// Badges shown on the dashboard.
var Badges = []string{"First Reaction", "Quiz Master", "Lab Safety"}
