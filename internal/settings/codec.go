package settings

import (
	"fmt"
	"math"

	"github.com/tinytelemetry/logdash/internal/model"
	"gopkg.in/yaml.v3"
)

// Namespace is the top-level key of the persisted record.
const Namespace = "settings"

type document struct {
	Settings record `yaml:"settings"`
}

// record holds only the whitelisted keys.
type record struct {
	RefreshInterval int    `yaml:"refreshInterval"`
	DarkMode        bool   `yaml:"darkMode"`
	DefaultView     string `yaml:"defaultView"`
}

// Encode serializes the whitelisted fields of s.
func Encode(s State) ([]byte, error) {
	doc := document{Settings: record{
		RefreshInterval: s.RefreshInterval,
		DarkMode:        s.DarkMode,
		DefaultView:     string(s.DefaultView),
	}}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("settings: encode: %w", err)
	}
	return data, nil
}

// Decode merges a persisted blob over the defaults. Keys that are missing,
// have the wrong type or fail validation keep their default. A blob that
// cannot be parsed at all yields the defaults and a non-nil error the caller
// may log; the returned state is always usable.
func Decode(data []byte) (State, error) {
	state := Defaults()
	if len(data) == 0 {
		return state, nil
	}

	var doc struct {
		Settings map[string]interface{} `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return state, fmt.Errorf("settings: decode: %w", err)
	}

	if v, ok := asInt(doc.Settings["refreshInterval"]); ok && ValidateRefreshInterval(v) == nil {
		state.RefreshInterval = v
	}
	if v, ok := doc.Settings["darkMode"].(bool); ok {
		state.DarkMode = v
	}
	if v, ok := doc.Settings["defaultView"].(string); ok {
		if view, err := model.ParseView(v); err == nil {
			state.DefaultView = view
		}
	}
	return state, nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
