package config

import "sort"

// Presets are named run constants. "original" matches the constants the
// simulator has always shipped with.
var Presets = map[string]*Config{
	"original": {
		Dt: 0.01, Eps: 0.1, ControlIters: 10000, RolloutIters: 10,
	},
	"fast": {
		Dt: 0.01, Eps: 0.1, ControlIters: 500, RolloutIters: 10,
	},
	"precise": {
		Dt: 0.01, Eps: 0.01, ControlIters: 100, RolloutIters: 10,
	},
	"long_horizon": {
		Dt: 0.01, Eps: 0.1, ControlIters: 10000, RolloutIters: 50,
	},
}

// GetPreset returns a copy so callers can override fields freely.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the run constants of a preset onto c, leaving paths alone.
func (c *Config) Apply(p *Config) {
	c.Dt = p.Dt
	c.Eps = p.Eps
	c.ControlIters = p.ControlIters
	c.RolloutIters = p.RolloutIters
}
