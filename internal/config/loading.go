package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads filename, writing a default config first when it does not exist.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			if err := generateDefaultConfig(filename); err != nil {
				return nil, fmt.Errorf("failed to generate default config file: %v", err)
			}
			data, err = os.ReadFile(filename)
			if err != nil {
				return nil, fmt.Errorf("failed to read generated config file: %v", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &config, nil
}

// DefaultConfig returns the configuration written for a fresh install.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: Default.Server.Host,
			Port: Default.Server.Port,
		},
		Remote: RemoteConfig{
			BaseURL:     Default.Remote.BaseURL,
			AccessToken: "YOUR_ACCESS_TOKEN_HERE",
			PageSize:    Default.Remote.PageSize,
		},
		View: ViewConfig{
			ShowDetail:    Default.View.ShowDetail,
			NoticeHistory: Default.View.NoticeHistory,
		},
		Logging: LoggingConfig{
			Level:         Default.Logging.Level,
			LogDirectory:  Default.Logging.LogDirectory,
			LogActions:    Default.Logging.LogActions,
			RetentionDays: Default.Logging.RetentionDays,
		},
		Timeouts: TimeoutConfig{
			TLSHandshake:   Default.Timeouts.TLSHandshake,
			ResponseHeader: Default.Timeouts.ResponseHeader,
			IdleConnection: Default.Timeouts.IdleConnection,
		},
		Tagging: TaggingConfig{
			PipelineTimeout: Default.Tagging.PipelineTimeout,
			Taggers: []TaggerConfig{
				{
					Name:        "slow",
					Type:        "builtin",
					BuiltinType: "slow-response",
					Tag:         "slow",
					Enabled:     true,
					Config:      map[string]interface{}{"threshold_ms": 5000},
				},
			},
		},
	}
}

func generateDefaultConfig(filename string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %v", err)
	}

	header := `# Channel Console Default Configuration File
# Auto-generated. Set remote.base_url and remote.access_token before use.

`

	if err := os.WriteFile(filename, []byte(header+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write default config file: %v", err)
	}

	fmt.Printf("Default configuration file generated: %s\n", filename)
	return nil
}

// SaveConfig validates config, keeps a .backup of the old file and writes the new one.
func SaveConfig(config *Config, filename string) error {
	if err := ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if _, err := os.Stat(filename); err == nil {
		backupFilename := filename + ".backup"
		if err := os.Rename(filename, backupFilename); err != nil {
			return fmt.Errorf("failed to create backup: %v", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}
