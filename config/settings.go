package config

import "time"

// LogSettings controls the process logger.
type LogSettings struct {
	Level  string `config:"level" validate:"oneof=debug info warn error"`
	Format string `config:"format" validate:"oneof=text json"`
}

// ServerSettings controls the HTTP surface started by `drmgr serve`.
type ServerSettings struct {
	Addr         string        `config:"addr" validate:"required"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type ActuatorSettings struct {
	BasePath string `config:"basePath" validate:"required,startswith=/"`
}

type MetricsSettings struct {
	Enabled bool `config:"enabled"`
}

// Settings is the root of drmgr's own configuration.
type Settings struct {
	Log LogSettings `config:"log"`
	// Separator splits section paths of a custom catalog. Exactly one
	// character. The built-in catalog always uses '|'.
	Separator string `config:"separator" validate:"required,len=1"`
	// Catalog optionally names a YAML file replacing the built-in section
	// catalog.
	Catalog string `config:"catalog"`
	// Board is the default board settings file used by the file adapter.
	Board    string           `config:"board"`
	Server   ServerSettings   `config:"server"`
	Actuator ActuatorSettings `config:"actuator"`
	Metrics  MetricsSettings  `config:"metrics"`
}

// SeparatorRune returns Separator as a rune.
func (s Settings) SeparatorRune() rune {
	for _, r := range s.Separator {
		return r
	}
	return '|'
}

// Defaults returns the lowest-precedence source.
func Defaults() Source {
	return &MapSource{
		Label: "defaults",
		Data: map[string]any{
			"log": map[string]any{
				"level":  "info",
				"format": "text",
			},
			"separator": "|",
			"server": map[string]any{
				"addr":         ":8080",
				"readTimeout":  "10s",
				"writeTimeout": "30s",
				"idleTimeout":  "60s",
			},
			"actuator": map[string]any{
				"basePath": "/actuator",
			},
			"metrics": map[string]any{
				"enabled": true,
			},
		},
	}
}
