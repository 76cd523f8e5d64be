package config

import (
	"time"
)

// DefaultValues keeps every default in one place.
type DefaultValues struct {
	Server struct {
		Host string
		Port int
	}

	Remote struct {
		BaseURL  string
		PageSize int
	}

	View struct {
		ShowDetail    bool
		NoticeHistory int
	}

	Timeouts struct {
		TLSHandshake   string
		ResponseHeader string
		IdleConnection string
		OverallRequest string
	}

	HTTPClient struct {
		MaxIdleConns   int
		MaxIdlePerHost int
	}

	Logging struct {
		Level         string
		LogDirectory  string
		LogActions    string
		RetentionDays int
	}

	Tagging struct {
		PipelineTimeout string
	}

	Database struct {
		BusyTimeout     int
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		MaxRetries      int
	}

	Pagination struct {
		DefaultLimit int
		MaxLimit     int
	}

	Persister struct {
		FlushInterval time.Duration
		MaxDirtyTime  time.Duration
	}

	ProxyDialer struct {
		Timeout   time.Duration
		KeepAlive time.Duration
	}
}

var Default = DefaultValues{
	Server: struct {
		Host string
		Port int
	}{
		Host: "127.0.0.1",
		Port: 8090,
	},

	Remote: struct {
		BaseURL  string
		PageSize int
	}{
		BaseURL:  "http://localhost:3000",
		PageSize: 10,
	},

	View: struct {
		ShowDetail    bool
		NoticeHistory int
	}{
		ShowDetail:    false,
		NoticeHistory: 200,
	},

	Timeouts: struct {
		TLSHandshake   string
		ResponseHeader string
		IdleConnection string
		OverallRequest string
	}{
		TLSHandshake:   "10s",
		ResponseHeader: "60s",
		IdleConnection: "90s",
		OverallRequest: "",
	},

	HTTPClient: struct {
		MaxIdleConns   int
		MaxIdlePerHost int
	}{
		MaxIdleConns:   50,
		MaxIdlePerHost: 10,
	},

	Logging: struct {
		Level         string
		LogDirectory  string
		LogActions    string
		RetentionDays int
	}{
		Level:         "info",
		LogDirectory:  "./logs",
		LogActions:    "all",
		RetentionDays: 30,
	},

	Tagging: struct {
		PipelineTimeout string
	}{
		PipelineTimeout: "2s",
	},

	Database: struct {
		BusyTimeout     int
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		MaxRetries      int
	}{
		BusyTimeout:     5000,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
		MaxRetries:      3,
	},

	Pagination: struct {
		DefaultLimit int
		MaxLimit     int
	}{
		DefaultLimit: 50,
		MaxLimit:     500,
	},

	Persister: struct {
		FlushInterval time.Duration
		MaxDirtyTime  time.Duration
	}{
		FlushInterval: 30 * time.Second,
		MaxDirtyTime:  5 * time.Minute,
	},

	ProxyDialer: struct {
		Timeout   time.Duration
		KeepAlive time.Duration
	}{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	},
}

// GetTimeoutDuration parses configValue, falling back to defaultValue when empty or invalid.
func GetTimeoutDuration(configValue string, defaultValue time.Duration) time.Duration {
	if configValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(configValue); err == nil {
		return d
	}
	return defaultValue
}

// GetStringWithDefault returns configValue unless it is empty.
func GetStringWithDefault(configValue, defaultValue string) string {
	if configValue == "" {
		return defaultValue
	}
	return configValue
}

// GetIntWithDefault returns configValue unless it is zero.
func GetIntWithDefault(configValue, defaultValue int) int {
	if configValue == 0 {
		return defaultValue
	}
	return configValue
}
