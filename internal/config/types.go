package config

// Config is the console configuration file.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Remote   RemoteConfig  `yaml:"remote"`
	View     ViewConfig    `yaml:"view"`
	Logging  LoggingConfig `yaml:"logging"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Tagging  TaggingConfig `yaml:"tagging"`
}

// Console HTTP server
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Require an X-CSRF-Token from /api/csrf-token on unsafe console requests
	CSRFProtection bool `yaml:"csrf_protection" json:"csrf_protection"`

	// Persister settings for client-local state such as view.show_detail
	ConfigFlushInterval string `yaml:"config_flush_interval,omitempty" json:"config_flush_interval,omitempty"`
	ConfigMaxDirtyTime  string `yaml:"config_max_dirty_time,omitempty" json:"config_max_dirty_time,omitempty"`
}

// RemoteConfig describes the channel store the console talks to.
type RemoteConfig struct {
	BaseURL     string       `yaml:"base_url" json:"base_url"`
	AccessToken string       `yaml:"access_token" json:"access_token"` // sent as a bearer token
	PageSize    int          `yaml:"page_size" json:"page_size"`
	Proxy       *ProxyConfig `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// Outbound proxy for calls to the gateway
type ProxyConfig struct {
	Type     string `yaml:"type" json:"type"`       // "http" | "socks5"
	Address  string `yaml:"address" json:"address"` // e.g. "127.0.0.1:1080"
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// ViewConfig is client-local view state, never sent to the store.
type ViewConfig struct {
	ShowDetail    bool `yaml:"show_detail" json:"show_detail"`
	NoticeHistory int  `yaml:"notice_history" json:"notice_history"`
}

// Logging and action journal
type LoggingConfig struct {
	Level         string `yaml:"level"`
	LogDirectory  string `yaml:"log_directory"`
	LogActions    string `yaml:"log_actions"` // "failed" | "success" | "all" | "none"
	RetentionDays int    `yaml:"retention_days"`
}

// HTTP client timeouts, as Go durations
type TimeoutConfig struct {
	TLSHandshake   string `yaml:"tls_handshake" json:"tls_handshake"`
	ResponseHeader string `yaml:"response_header" json:"response_header"`
	IdleConnection string `yaml:"idle_connection" json:"idle_connection"`
	// Health tests against slow upstreams can take a while; empty means no overall limit
	OverallRequest string `yaml:"overall_request" json:"overall_request"`
}

// Row tagging, evaluated on every render
type TaggingConfig struct {
	PipelineTimeout string         `yaml:"pipeline_timeout"`
	Taggers         []TaggerConfig `yaml:"taggers"`
}

type TaggerConfig struct {
	Name        string                 `yaml:"name"`
	Type        string                 `yaml:"type"`         // "builtin" | "starlark"
	BuiltinType string                 `yaml:"builtin_type"` // "slow-response" | "low-balance" | "status" | "group" | "model"
	Tag         string                 `yaml:"tag"`
	Enabled     bool                   `yaml:"enabled"`
	Config      map[string]interface{} `yaml:"config"`
}
