package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ValidateConfig fills defaults in place and rejects unusable settings.
func ValidateConfig(config *Config) error {
	if config.Server.Host == "" {
		config.Server.Host = Default.Server.Host
	}
	if config.Server.Port == 0 {
		config.Server.Port = Default.Server.Port
	}
	if err := validateServerConfig(config.Server); err != nil {
		return err
	}

	if err := validateRemoteConfig(&config.Remote); err != nil {
		return fmt.Errorf("remote configuration error: %v", err)
	}

	if config.View.NoticeHistory <= 0 {
		config.View.NoticeHistory = Default.View.NoticeHistory
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging configuration error: %v", err)
	}

	if err := validateTaggingConfig(&config.Tagging); err != nil {
		return fmt.Errorf("tagging configuration error: %v", err)
	}

	if err := validateTimeoutConfig(&config.Timeouts); err != nil {
		return fmt.Errorf("timeout configuration error: %v", err)
	}

	return nil
}

func validateServerConfig(server ServerConfig) error {
	if server.Port <= 0 || server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", server.Port)
	}
	for name, value := range map[string]string{
		"config_flush_interval": server.ConfigFlushInterval,
		"config_max_dirty_time": server.ConfigMaxDirtyTime,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s '%s': %v", name, value, err)
		}
	}
	return nil
}

func validateRemoteConfig(config *RemoteConfig) error {
	if config.BaseURL == "" {
		config.BaseURL = Default.Remote.BaseURL
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url '%s': %v", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url '%s': scheme must be http or https", config.BaseURL)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.PageSize == 0 {
		config.PageSize = Default.Remote.PageSize
	}
	if config.PageSize < 0 {
		return fmt.Errorf("page_size cannot be negative")
	}

	if config.Proxy != nil {
		if err := validateProxyConfig(config.Proxy, "remote"); err != nil {
			return err
		}
	}
	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	if config.Level == "" {
		config.Level = Default.Logging.Level
	}
	if config.LogDirectory == "" {
		config.LogDirectory = Default.Logging.LogDirectory
	}
	if config.LogActions == "" {
		config.LogActions = Default.Logging.LogActions
	}
	validActionTypes := []string{"failed", "success", "all", "none"}
	valid := false
	for _, vt := range validActionTypes {
		if config.LogActions == vt {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log_actions '%s', must be one of: failed, success, all, none", config.LogActions)
	}
	if config.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative")
	}
	return nil
}

var validBuiltinTaggers = []string{"slow-response", "low-balance", "status", "group", "model"}

func validateTaggingConfig(config *TaggingConfig) error {
	if config.PipelineTimeout == "" {
		config.PipelineTimeout = Default.Tagging.PipelineTimeout
	}

	if _, err := time.ParseDuration(config.PipelineTimeout); err != nil {
		return fmt.Errorf("invalid pipeline_timeout '%s': %v", config.PipelineTimeout, err)
	}

	tagNames := make(map[string]bool)
	for i, tagger := range config.Taggers {
		if tagger.Name == "" {
			return fmt.Errorf("tagger[%d]: name is required", i)
		}

		if tagNames[tagger.Name] {
			return fmt.Errorf("tagger[%d]: duplicate name '%s'", i, tagger.Name)
		}
		tagNames[tagger.Name] = true

		if tagger.Tag == "" {
			return fmt.Errorf("tagger[%d] '%s': tag is required", i, tagger.Name)
		}

		switch tagger.Type {
		case "builtin":
			validType := false
			for _, vt := range validBuiltinTaggers {
				if tagger.BuiltinType == vt {
					validType = true
					break
				}
			}
			if !validType {
				return fmt.Errorf("tagger[%d] '%s': invalid builtin_type '%s', must be one of: %v",
					i, tagger.Name, tagger.BuiltinType, validBuiltinTaggers)
			}
		case "starlark":
			scriptFile, _ := tagger.Config["script_file"].(string)
			script, _ := tagger.Config["script"].(string)
			if scriptFile == "" && script == "" {
				return fmt.Errorf("tagger[%d] '%s': starlark tagger requires either script_file or script in config", i, tagger.Name)
			}
		default:
			return fmt.Errorf("tagger[%d] '%s': type must be 'builtin' or 'starlark'", i, tagger.Name)
		}
	}

	return nil
}

func validateTimeoutConfig(config *TimeoutConfig) error {
	if config.TLSHandshake == "" {
		config.TLSHandshake = Default.Timeouts.TLSHandshake
	}
	if config.ResponseHeader == "" {
		config.ResponseHeader = Default.Timeouts.ResponseHeader
	}
	if config.IdleConnection == "" {
		config.IdleConnection = Default.Timeouts.IdleConnection
	}

	timeoutFields := map[string]string{
		"tls_handshake":   config.TLSHandshake,
		"response_header": config.ResponseHeader,
		"idle_connection": config.IdleConnection,
		"overall_request": config.OverallRequest,
	}

	for fieldName, value := range timeoutFields {
		if value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout '%s' for field '%s': %v", value, fieldName, err)
			}
		}
	}

	return nil
}

func validateProxyConfig(config *ProxyConfig, context string) error {
	if config.Type == "" {
		return fmt.Errorf("%s: proxy type is required", context)
	}

	validTypes := []string{"http", "socks5"}
	validType := false
	for _, vt := range validTypes {
		if config.Type == vt {
			validType = true
			break
		}
	}
	if !validType {
		return fmt.Errorf("%s: invalid proxy type '%s', must be one of: %v", context, config.Type, validTypes)
	}

	if config.Address == "" {
		return fmt.Errorf("%s: proxy address is required", context)
	}

	if _, _, err := net.SplitHostPort(config.Address); err != nil {
		return fmt.Errorf("%s: invalid proxy address '%s': %v", context, config.Address, err)
	}

	if (config.Username != "" && config.Password == "") || (config.Username == "" && config.Password != "") {
		return fmt.Errorf("%s: proxy username and password must both be provided or both be empty", context)
	}

	return nil
}
