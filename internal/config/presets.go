package config

import "sort"

var Presets = map[string]func(*Config){
	// The reference parameter block, unchanged.
	"default": func(c *Config) {},
	"light-load": func(c *Config) {
		c.Simulation.TotalTime = 600
		c.Load.Moment = 1
	},
	"heavy-load": func(c *Config) {
		c.Load.Moment = 8
		c.Drive.ReferenceRPM = 2000
	},
	"load-step": func(c *Config) {
		c.Load.Moment = 1
		c.Load.StepTime = 500
		c.Load.StepMoment = 5
	},
	"open-loop": func(c *Config) {
		c.Simulation.TotalTime = 300
		c.Drive.Mode = ModeOpenLoop
		c.Drive.Voltage = 18
		c.Load.Moment = 2
	},
}

// GetPreset returns the defaults modified by the named preset, or nil.
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
