package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":   "~/.reminderd",
		"store_file": "reminders.json",
		"logging": map[string]interface{}{
			"level": "info",
		},
		"scheduler": map[string]interface{}{
			"poll_interval": 1, // seconds; human-perceptible timeliness without meaningful CPU cost
		},
		"notify": map[string]interface{}{
			"enabled":  true,
			"app_name": "reminderd",
		},
		"sound": map[string]interface{}{
			"enabled": true,
			"source":  "", // empty means the bundled chime
		},
		"history": map[string]interface{}{
			"enabled": true,
			"file":    "history.db",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.reminderd/config.yaml"
}
