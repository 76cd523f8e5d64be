package httpclient

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"channel-console/internal/common/utils"
	"channel-console/internal/config"

	"golang.org/x/net/proxy"
)

// ClientType selects a preset of client settings.
type ClientType string

const (
	// ClientTypeStore serves list, search and mutation calls
	ClientTypeStore ClientType = "store"
	// ClientTypeProbe serves health tests and balance refreshes, which wait on upstream providers
	ClientTypeProbe ClientType = "probe"
)

type TimeoutConfig struct {
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
	IdleConnection time.Duration
	OverallRequest time.Duration // 0 means no limit
}

type ClientConfig struct {
	Type               ClientType
	Timeouts           TimeoutConfig
	ProxyConfig        *config.ProxyConfig
	MaxIdleConns       int
	MaxIdlePerHost     int
	DisableKeepAlive   bool
	InsecureSkipVerify bool
	MaxConnsPerHost    int
	ForceAttemptHTTP2  bool
	WriteBufferSize    int
	ReadBufferSize     int
}

// Factory builds http.Clients from presets and user overrides.
type Factory struct {
	defaultConfigs map[ClientType]ClientConfig
}

// NewFactory loads the store and probe presets.
func NewFactory() *Factory {
	baseTimeouts := TimeoutConfig{
		TLSHandshake:   config.GetTimeoutDuration(config.Default.Timeouts.TLSHandshake, 10*time.Second),
		ResponseHeader: config.GetTimeoutDuration(config.Default.Timeouts.ResponseHeader, 60*time.Second),
		IdleConnection: config.GetTimeoutDuration(config.Default.Timeouts.IdleConnection, 90*time.Second),
	}

	return &Factory{
		defaultConfigs: map[ClientType]ClientConfig{
			ClientTypeStore: {
				Type:              ClientTypeStore,
				Timeouts:          baseTimeouts,
				MaxIdleConns:      config.Default.HTTPClient.MaxIdleConns,
				MaxIdlePerHost:    config.Default.HTTPClient.MaxIdlePerHost,
				MaxConnsPerHost:   20,
				ForceAttemptHTTP2: true,
				WriteBufferSize:   8 * 1024,
				ReadBufferSize:    32 * 1024,
			},
			ClientTypeProbe: {
				Type:     ClientTypeProbe,
				Timeouts: baseTimeouts,
				// bulk tests can fan out many concurrent row probes
				MaxIdleConns:    config.Default.HTTPClient.MaxIdleConns,
				MaxIdlePerHost:  config.Default.HTTPClient.MaxIdlePerHost,
				MaxConnsPerHost: 50,
				WriteBufferSize: 4 * 1024,
				ReadBufferSize:  8 * 1024,
			},
		},
	}
}

// CreateClient builds a client with its own transport.
func (f *Factory) CreateClient(cfg ClientConfig) (*http.Client, error) {
	if defaultConfig, exists := f.defaultConfigs[cfg.Type]; exists {
		cfg = f.mergeConfigs(defaultConfig, cfg)
	}

	transport := &http.Transport{
		TLSHandshakeTimeout:   cfg.Timeouts.TLSHandshake,
		ResponseHeaderTimeout: cfg.Timeouts.ResponseHeader,
		IdleConnTimeout:       cfg.Timeouts.IdleConnection,
		DisableKeepAlives:     cfg.DisableKeepAlive,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdlePerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		ForceAttemptHTTP2:     cfg.ForceAttemptHTTP2,
		WriteBufferSize:       cfg.WriteBufferSize,
		ReadBufferSize:        cfg.ReadBufferSize,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.ProxyConfig != nil {
		if err := f.applyProxy(transport, cfg.ProxyConfig); err != nil {
			return nil, fmt.Errorf("failed to create proxy dialer: %v", err)
		}
	}

	return &http.Client{
		Transport: &gzipRoundTripper{transport: transport},
		Timeout:   cfg.Timeouts.OverallRequest,
	}, nil
}

// applyProxy routes transport through an http or socks5 proxy.
func (f *Factory) applyProxy(transport *http.Transport, proxyCfg *config.ProxyConfig) error {
	switch proxyCfg.Type {
	case "http":
		proxyURL := &url.URL{Scheme: "http", Host: proxyCfg.Address}
		transport.Proxy = http.ProxyURL(proxyURL)
		if auth := utils.BasicAuth(proxyCfg.Username, proxyCfg.Password); auth != "" {
			transport.ProxyConnectHeader = http.Header{"Proxy-Authorization": []string{"Basic " + auth}}
		}
		return nil
	case "socks5":
		dialer, err := f.createProxyDialer(proxyCfg)
		if err != nil {
			return err
		}
		transport.DialContext = dialer.DialContext
		return nil
	default:
		return fmt.Errorf("unsupported proxy type: %s", proxyCfg.Type)
	}
}

func (f *Factory) createProxyDialer(proxyCfg *config.ProxyConfig) (proxy.ContextDialer, error) {
	var auth *proxy.Auth
	if proxyCfg.Username != "" {
		auth = &proxy.Auth{User: proxyCfg.Username, Password: proxyCfg.Password}
	}
	forward := &net.Dialer{
		Timeout:   config.Default.ProxyDialer.Timeout,
		KeepAlive: config.Default.ProxyDialer.KeepAlive,
	}
	dialer, err := proxy.SOCKS5("tcp", proxyCfg.Address, auth, forward)
	if err != nil {
		return nil, err
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd, nil
	}
	return contextDialer{dialer}, nil
}

type contextDialer struct {
	proxy.Dialer
}

func (d contextDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d.Dial(network, addr)
}

// CreateStoreClient builds the client used for channel store calls.
func (f *Factory) CreateStoreClient(proxyConfig *config.ProxyConfig, timeouts TimeoutConfig) (*http.Client, error) {
	return f.CreateClient(ClientConfig{
		Type:        ClientTypeStore,
		Timeouts:    timeouts,
		ProxyConfig: proxyConfig,
	})
}

// CreateProbeClient builds the client used for health tests.
func (f *Factory) CreateProbeClient(proxyConfig *config.ProxyConfig, timeouts TimeoutConfig) (*http.Client, error) {
	return f.CreateClient(ClientConfig{
		Type:        ClientTypeProbe,
		Timeouts:    timeouts,
		ProxyConfig: proxyConfig,
	})
}

// mergeConfigs overlays the non-zero fields of userConfig on defaultConfig.
func (f *Factory) mergeConfigs(defaultConfig, userConfig ClientConfig) ClientConfig {
	result := defaultConfig

	if userConfig.Timeouts.TLSHandshake != 0 {
		result.Timeouts.TLSHandshake = userConfig.Timeouts.TLSHandshake
	}
	if userConfig.Timeouts.ResponseHeader != 0 {
		result.Timeouts.ResponseHeader = userConfig.Timeouts.ResponseHeader
	}
	if userConfig.Timeouts.IdleConnection != 0 {
		result.Timeouts.IdleConnection = userConfig.Timeouts.IdleConnection
	}
	if userConfig.Timeouts.OverallRequest != 0 {
		result.Timeouts.OverallRequest = userConfig.Timeouts.OverallRequest
	}
	if userConfig.MaxIdleConns != 0 {
		result.MaxIdleConns = userConfig.MaxIdleConns
	}
	if userConfig.MaxIdlePerHost != 0 {
		result.MaxIdlePerHost = userConfig.MaxIdlePerHost
	}
	if userConfig.MaxConnsPerHost != 0 {
		result.MaxConnsPerHost = userConfig.MaxConnsPerHost
	}
	if userConfig.ProxyConfig != nil {
		result.ProxyConfig = userConfig.ProxyConfig
	}

	result.DisableKeepAlive = userConfig.DisableKeepAlive
	result.InsecureSkipVerify = userConfig.InsecureSkipVerify

	return result
}

// TimeoutsFromConfig converts the YAML timeout section.
func TimeoutsFromConfig(tc config.TimeoutConfig) TimeoutConfig {
	return TimeoutConfig{
		TLSHandshake:   config.GetTimeoutDuration(tc.TLSHandshake, 10*time.Second),
		ResponseHeader: config.GetTimeoutDuration(tc.ResponseHeader, 60*time.Second),
		IdleConnection: config.GetTimeoutDuration(tc.IdleConnection, 90*time.Second),
		OverallRequest: config.GetTimeoutDuration(tc.OverallRequest, 0),
	}
}

type gzipRoundTripper struct {
	transport http.RoundTripper
}

func (grt *gzipRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	resp, err := grt.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		resp.Body = &gzipReadCloser{source: resp.Body}
		resp.Header.Del("Content-Encoding")
		resp.ContentLength = -1
	}

	return resp, nil
}

type gzipReadCloser struct {
	source     io.ReadCloser
	gzipReader *gzip.Reader
}

func (grc *gzipReadCloser) Read(p []byte) (n int, err error) {
	if grc.gzipReader == nil {
		grc.gzipReader, err = gzip.NewReader(grc.source)
		if err != nil {
			return 0, err
		}
	}
	return grc.gzipReader.Read(p)
}

func (grc *gzipReadCloser) Close() error {
	if grc.gzipReader != nil {
		grc.gzipReader.Close()
	}
	return grc.source.Close()
}
