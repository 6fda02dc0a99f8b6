package settings

import (
	"fmt"

	"github.com/tinytelemetry/logdash/internal/model"
)

// Refresh interval bounds, in seconds.
const (
	MinRefreshInterval = 5
	MaxRefreshInterval = 300
)

// State is the persisted user preference set.
type State struct {
	RefreshInterval int        `json:"refreshInterval" yaml:"refreshInterval"`
	DarkMode        bool       `json:"darkMode" yaml:"darkMode"`
	DefaultView     model.View `json:"defaultView" yaml:"defaultView"`
}

// Defaults returns the initial settings.
func Defaults() State {
	return State{
		RefreshInterval: 30,
		DarkMode:        false,
		DefaultView:     model.ViewDashboard,
	}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	RefreshInterval *int        `json:"refreshInterval,omitempty"`
	DarkMode        *bool       `json:"darkMode,omitempty"`
	DefaultView     *model.View `json:"defaultView,omitempty"`
}

// Apply returns s with the non-nil fields of p merged in.
func (p Patch) Apply(s State) State {
	if p.RefreshInterval != nil {
		s.RefreshInterval = *p.RefreshInterval
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.DefaultView != nil {
		s.DefaultView = *p.DefaultView
	}
	return s
}

// ValidationError reports a settings field that fails its constraints.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks every field of s.
func (s State) Validate() error {
	if err := ValidateRefreshInterval(s.RefreshInterval); err != nil {
		return err
	}
	if !s.DefaultView.Valid() {
		return &ValidationError{Field: "defaultView", Message: fmt.Sprintf("unknown view %q", s.DefaultView)}
	}
	return nil
}

// ValidateRefreshInterval checks an interval in seconds.
func ValidateRefreshInterval(seconds int) error {
	if seconds < MinRefreshInterval {
		return &ValidationError{Field: "refreshInterval", Message: "Interval must be at least 5 seconds"}
	}
	if seconds > MaxRefreshInterval {
		return &ValidationError{Field: "refreshInterval", Message: "Interval must be at most 300 seconds"}
	}
	return nil
}
