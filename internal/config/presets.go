package config

import "sort"

// Presets are named starting points; each call to GetPreset returns a copy.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"calm": func(c *Config) {
		c.Environment.Bias = -40
		c.Environment.Amplitude = 40
		c.Environment.Period = 20
	},
	"windy": func(c *Config) {
		c.Environment.Bias = -250
		c.Environment.Amplitude = 100
		c.Environment.Period = 6
	},
	"p-only": func(c *Config) {
		c.Controller.Ki = 0
		c.Controller.Kd = 0
	},
	"no-integral": func(c *Config) {
		c.Controller.Ki = 0
	},
	"open-loop": func(c *Config) {
		c.Controller.Type = "none"
		c.Sim.Duration = 5
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
