package model

import (
	"fmt"
	"strings"
)

// View names one of the dashboard screens.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewLogs      View = "logs"
	ViewAnalysis  View = "analysis"
	ViewSettings  View = "settings"
)

// Views lists every screen in navigation order.
var Views = []View{ViewDashboard, ViewLogs, ViewAnalysis, ViewSettings}

// Title returns the display name of the view.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewLogs:
		return "Logs"
	case ViewAnalysis:
		return "Analysis"
	case ViewSettings:
		return "Settings"
	}
	return string(v)
}

// Valid reports whether v names a known screen.
func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// ParseView validates a view name, ignoring case and surrounding space.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown view %q", s)
	}
	return v, nil
}
