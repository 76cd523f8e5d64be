package httpclient

import (
	"net/http"
	"sync"

	"channel-console/internal/config"
)

// Manager hands out the shared store and probe clients.
type Manager struct {
	factory     *Factory
	storeClient *http.Client
	probeClient *http.Client
	mutex       sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the process-wide client manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			factory: NewFactory(),
		}
	})
	return globalManager
}

// InitClients (re)builds both clients from the remote and timeout sections.
func (m *Manager) InitClients(proxyConfig *config.ProxyConfig, timeouts TimeoutConfig) error {
	store, err := m.factory.CreateStoreClient(proxyConfig, timeouts)
	if err != nil {
		return err
	}
	probe, err := m.factory.CreateProbeClient(proxyConfig, timeouts)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.storeClient = store
	m.probeClient = probe
	return nil
}

func (m *Manager) GetStoreClient() *http.Client {
	m.mutex.RLock()
	client := m.storeClient
	m.mutex.RUnlock()
	if client != nil {
		return client
	}
	m.initDefaults()
	return m.GetStoreClient()
}

func (m *Manager) GetProbeClient() *http.Client {
	m.mutex.RLock()
	client := m.probeClient
	m.mutex.RUnlock()
	if client != nil {
		return client
	}
	m.initDefaults()
	return m.GetProbeClient()
}

func (m *Manager) initDefaults() {
	// no proxy, so creation cannot fail
	_ = m.InitClients(nil, m.factory.defaultConfigs[ClientTypeStore].Timeouts)
}

// InitHTTPClients builds the shared clients; call it once at startup.
func InitHTTPClients(proxyConfig *config.ProxyConfig, timeouts TimeoutConfig) error {
	return GetManager().InitClients(proxyConfig, timeouts)
}

func GetStoreClient() *http.Client {
	return GetManager().GetStoreClient()
}

func GetProbeClient() *http.Client {
	return GetManager().GetProbeClient()
}
