package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"channel-console/internal/collection"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/common/httpclient"
	"channel-console/internal/config"
	"channel-console/internal/console"
	"channel-console/internal/dispatch"
	"channel-console/internal/interfaces"
	logger "channel-console/internal/logger"
	"channel-console/internal/metrics"
	"channel-console/internal/notice"
	"channel-console/internal/options"
	"channel-console/internal/remote"
	"channel-console/internal/security"
	"channel-console/internal/taggers"
)

// backend is everything the console needs from the gateway.
type backend interface {
	remote.Store
	remote.OptionStore
}

// App holds the wired components for one process, whether it serves the
// console or runs a single command.
type App struct {
	mutex      sync.RWMutex
	running    bool
	startedAt  time.Time
	configPath string
	config     *config.Config

	persister  *config.ConfigPersister
	logger     *logger.Logger
	metrics    *metrics.Metrics
	notices    *notice.Center
	store      backend
	pipeline   *taggers.Pipeline
	view       *collection.View
	dispatcher *dispatch.Dispatcher
	options    *options.Manager
	csrf       *security.CSRFManager
	server     *console.Server
}

// NewApp loads configPath and connects to the configured gateway. Notices
// are echoed to out.
func NewApp(configPath string, out io.Writer) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(logger.LogConfig{
		Level:         cfg.Logging.Level,
		LogActions:    cfg.Logging.LogActions,
		LogDirectory:  cfg.Logging.LogDirectory,
		RetentionDays: cfg.Logging.RetentionDays,
	})
	if err != nil {
		return nil, err
	}

	timeouts := httpclient.TimeoutsFromConfig(cfg.Timeouts)
	if err := httpclient.InitHTTPClients(cfg.Remote.Proxy, timeouts); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to initialize http clients: %w", err)
	}

	m := metrics.NewMetrics()
	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.AccessToken, httpclient.GetStoreClient(),
		remote.WithProbeClient(httpclient.GetProbeClient()),
		remote.WithObserver(m),
		remote.WithLogger(log.Logrus()),
	)

	app, err := newApp(cfg, configPath, client, log, m, out)
	if err != nil {
		log.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, configPath string, store backend, log *logger.Logger, m *metrics.Metrics, out io.Writer) (*App, error) {
	a := &App{
		configPath: configPath,
		config:     cfg,
		logger:     log,
		metrics:    m,
		store:      store,
	}

	a.persister = config.NewConfigPersister(cfg, configPath, &config.PersisterConfig{
		FlushInterval: config.GetTimeoutDuration(cfg.Server.ConfigFlushInterval, config.Default.Persister.FlushInterval),
		MaxDirtyTime:  config.GetTimeoutDuration(cfg.Server.ConfigMaxDirtyTime, config.Default.Persister.MaxDirtyTime),
	})

	a.notices = notice.NewCenter(config.GetIntWithDefault(cfg.View.NoticeHistory, config.Default.View.NoticeHistory),
		notice.LogSink{Logger: log.Logrus()},
		notice.SinkFunc(func(n notice.Notice) { m.NoticeRaised(n.Level) }),
	)
	if out != nil {
		a.notices.AddSink(notice.NewConsoleSink(out))
	}

	pipeline, err := taggers.NewPipeline(cfg.Tagging, log.Logrus())
	if err != nil {
		return nil, consoleerrors.NewConfigError("tagging", err.Error())
	}
	a.pipeline = pipeline

	viewOpts := collection.Options{
		PageSize: config.GetIntWithDefault(cfg.Remote.PageSize, config.Default.Remote.PageSize),
		Notifier: a.notices,
		Detail:   config.NewDetailToggle(a.persister),
		Logger:   log.Logrus(),
	}
	if pipeline.Len() > 0 {
		viewOpts.Tags = pipeline
	}
	a.view = collection.NewView(store, viewOpts)

	a.dispatcher = dispatch.New(a.view, store,
		dispatch.WithObserver(interfaces.ActionObservers{log, m}),
		dispatch.WithLogger(log.Logrus()),
	)
	a.options = options.NewManager(store, a.notices, log.Logrus())
	if cfg.Server.CSRFProtection {
		a.csrf = security.NewCSRFManager(24 * time.Hour)
	}

	a.server = console.NewServer(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), console.Deps{
		View:       a.view,
		Dispatcher: a.dispatcher,
		Notices:    a.notices,
		Options:    a.options,
		Journal:    log,
		Metrics:    m,
		CSRF:       a.csrf,
		Logger:     log.Logrus(),
	})
	return a, nil
}

// serve loads the first page and runs the console server until ctx is done.
func (a *App) serve(ctx context.Context) error {
	a.persister.Start()

	// a failed first load is already surfaced as a notice; the operator can refresh
	if err := a.view.Load(ctx); err != nil {
		a.logger.Error("initial load failed", err)
	}

	a.mutex.Lock()
	a.running = true
	a.startedAt = time.Now()
	a.mutex.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		a.setStopped()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.server.Stop(shutdownCtx)
	a.setStopped()
	return err
}

func (a *App) setStopped() {
	a.mutex.Lock()
	a.running = false
	a.mutex.Unlock()
}

// openPage loads page zero and walks forward to page, fetching each boundary page.
func (a *App) openPage(ctx context.Context, page int) error {
	if err := a.view.Load(ctx); err != nil {
		return err
	}
	for p := 2; p <= page; p++ {
		if err := a.view.GoToPage(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cleanup() {
	if a.csrf != nil {
		a.csrf.Stop()
	}
	if a.persister != nil {
		if err := a.persister.Stop(); err != nil {
			a.logger.Error("failed to flush config", err)
		}
	}
	if a.logger != nil {
		a.logger.Close()
	}
}

// GetServerStatus reports the console server state.
func (a *App) GetServerStatus() map[string]interface{} {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	status := map[string]interface{}{
		"running":     a.running,
		"host":        config.GetStringWithDefault(a.config.Server.Host, config.Default.Server.Host),
		"port":        config.GetIntWithDefault(a.config.Server.Port, config.Default.Server.Port),
		"remote":      a.config.Remote.BaseURL,
		"config_path": a.configPath,
		"loaded":      a.view.Cache().Len(),
		"taggers":     a.pipeline.Len(),
		"journal":     a.logger.GetDatabaseHealth(),
		"config_sync": a.persister.GetStats().String(),
	}
	if a.running {
		status["uptime"] = time.Since(a.startedAt).Round(time.Second).String()
	}
	return status
}

func defaultConfigPath() string {
	if p := os.Getenv("CHANNEL_CONSOLE_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
