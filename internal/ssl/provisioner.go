package ssl

import (
	"github.com/birbalkumarkumar/search-guard-ssl/internal/config"
	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
)

// listenerKeys carries the configuration key names behind one listener's
// settings so that errors can name the exact offending key.
type listenerKeys struct {
	enabled        string
	preferNative   string
	keystorePath   string
	truststorePath string
	pemKeyPath     string
	pemCertPath    string
	pemCAPath      string
	ciphers        string
	protocols      string
}

type listenerStoreKeys struct {
	keystoreType   string
	keystorePass   string
	keystoreAlias  string
	truststoreType string
	truststorePass string
	trustAlias     string
	pemKeyPass     string
}

var transportKeys = listenerKeys{
	enabled:        config.KeyTransportEnabled,
	preferNative:   config.KeyTransportPreferNative,
	keystorePath:   config.KeyTransportKeystorePath,
	truststorePath: config.KeyTransportTruststorePath,
	pemKeyPath:     config.KeyTransportPEMKeyPath,
	pemCertPath:    config.KeyTransportPEMCertPath,
	pemCAPath:      config.KeyTransportPEMCAPath,
	ciphers:        config.KeyTransportCiphers,
	protocols:      config.KeyTransportProtocols,
}

var transportStoreKeys = listenerStoreKeys{
	keystoreType:   config.KeyTransportKeystoreType,
	keystorePass:   config.KeyTransportKeystorePass,
	keystoreAlias:  config.KeyTransportKeystoreAlias,
	truststoreType: config.KeyTransportTruststoreType,
	truststorePass: config.KeyTransportTruststorePass,
	trustAlias:     config.KeyTransportTrustAlias,
	pemKeyPass:     config.KeyTransportPEMKeyPass,
}

var httpKeys = listenerKeys{
	enabled:        config.KeyHTTPEnabled,
	preferNative:   config.KeyHTTPPreferNative,
	keystorePath:   config.KeyHTTPKeystorePath,
	truststorePath: config.KeyHTTPTruststorePath,
	pemKeyPath:     config.KeyHTTPPEMKeyPath,
	pemCertPath:    config.KeyHTTPPEMCertPath,
	pemCAPath:      config.KeyHTTPPEMCAPath,
	ciphers:        config.KeyHTTPCiphers,
	protocols:      config.KeyHTTPProtocols,
}

var httpStoreKeys = listenerStoreKeys{
	keystoreType:   config.KeyHTTPKeystoreType,
	keystorePass:   config.KeyHTTPKeystorePass,
	keystoreAlias:  config.KeyHTTPKeystoreAlias,
	truststoreType: config.KeyHTTPTruststoreType,
	truststorePass: config.KeyHTTPTruststorePass,
	trustAlias:     config.KeyHTTPTrustAlias,
	pemKeyPass:     config.KeyHTTPPEMKeyPass,
}

// listenerConfig is the fully gathered raw configuration of one listener
// layer before any file is touched.
type listenerConfig struct {
	listener     Listener
	keys         listenerKeys
	enabled      bool
	preferNative bool

	keystorePath     string
	keystoreType     string
	keystorePassword string
	keystoreAlias    string

	truststorePath     string
	truststoreType     string
	truststorePassword string
	truststoreAlias    string

	pemKeyPath     string
	pemKeyPassword string
	pemCertPath    string
	pemCAPath      string

	clientAuth ClientAuthMode
	ciphers    []string
	protocols  []string
}

// Provisioner owns the TLS state of one node: it reads the listener
// configuration once, probes the backend, loads credentials, and builds the
// immutable contexts every later connection derives its engine from. All
// construction work happens in New; a returned Provisioner never changes.
type Provisioner struct {
	logger  observability.Logger
	metrics MetricsRecorder

	httpServer      *Context
	transportServer *Context
	transportClient *Context
}

// Option adjusts provisioner construction.
type Option func(*Provisioner)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(p *Provisioner) {
		p.metrics = metrics
	}
}

// New builds all TLS contexts for the node from the given settings. Any
// configuration or credential problem fails construction; nothing is served
// with a partially working TLS setup. Credential material is consumed into
// the contexts and not retained.
func New(settings *config.Settings, opts ...Option) (*Provisioner, error) {
	p := &Provisioner{
		logger:  observability.NopLogger(),
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}

	resolver := NewPathResolver(settings.BaseDir())
	loader := NewCredentialLoader(resolver, p.logger)

	transport := gatherListenerConfig(settings, ListenerTransportServer, transportKeys, transportStoreKeys)
	httpCfg := gatherListenerConfig(settings, ListenerHTTP, httpKeys, httpStoreKeys)

	httpAuth, err := ParseClientAuthMode(settings.String(config.KeyHTTPClientAuthMode, config.DefaultClientAuthMode))
	if err != nil {
		return nil, NewConfigurationErrorWithCause(config.KeyHTTPClientAuthMode, "invalid client auth mode", err)
	}
	httpCfg.clientAuth = httpAuth

	if transport.enabled {
		if err := p.initTransport(transport, loader); err != nil {
			return nil, err
		}
	} else {
		p.logger.Warn("transport ssl is disabled, node-to-node traffic is not protected")
	}

	if httpCfg.enabled {
		if err := p.initHTTP(httpCfg, loader); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// gatherListenerConfig reads every key of one listener layer.
func gatherListenerConfig(
	settings *config.Settings,
	listener Listener,
	keys listenerKeys,
	storeKeys listenerStoreKeys,
) listenerConfig {
	enabledDefault := config.DefaultTransportEnabled
	if listener == ListenerHTTP {
		enabledDefault = config.DefaultHTTPEnabled
	}

	return listenerConfig{
		listener:     listener,
		keys:         keys,
		enabled:      settings.Bool(keys.enabled, enabledDefault),
		preferNative: settings.Bool(keys.preferNative, config.DefaultPreferNative),

		keystorePath:     settings.String(keys.keystorePath, ""),
		keystoreType:     settings.String(storeKeys.keystoreType, config.DefaultStoreType),
		keystorePassword: settings.String(storeKeys.keystorePass, config.DefaultStorePassword),
		keystoreAlias:    settings.String(storeKeys.keystoreAlias, ""),

		truststorePath:     settings.String(keys.truststorePath, ""),
		truststoreType:     settings.String(storeKeys.truststoreType, config.DefaultStoreType),
		truststorePassword: settings.String(storeKeys.truststorePass, config.DefaultStorePassword),
		truststoreAlias:    settings.String(storeKeys.trustAlias, ""),

		pemKeyPath:     settings.String(keys.pemKeyPath, ""),
		pemKeyPassword: settings.String(storeKeys.pemKeyPass, ""),
		pemCertPath:    settings.String(keys.pemCertPath, ""),
		pemCAPath:      settings.String(keys.pemCAPath, ""),

		ciphers:   settings.Strings(keys.ciphers, config.DefaultCiphers()),
		protocols: settings.Strings(keys.protocols, config.DefaultProtocols()),
	}
}

// initTransport builds the transport server and client contexts from one
// credential load. Transport trust anchors are always mandatory since the
// transport is mutually authenticated in both directions.
func (p *Provisioner) initTransport(lc listenerConfig, loader *CredentialLoader) error {
	backend := selectBackend(lc.preferNative, p.logger)
	ciphers, protocols, err := p.negotiate(lc, backend)
	if err != nil {
		return err
	}

	material, err := loader.Load(lc, true)
	if err != nil {
		return err
	}

	server, err := buildServerContext(
		lc.listener, material, ciphers, protocols, backend.Kind(), ClientAuthRequire)
	if err != nil {
		return err
	}
	client, err := buildClientContext(
		ListenerTransportClient, material, ciphers, protocols, backend.Kind())
	if err != nil {
		return err
	}

	p.transportServer = server
	p.transportClient = client
	p.recordContext(server, material)
	p.logContext(server)
	p.recordContext(client, material)
	p.logContext(client)
	return nil
}

// initHTTP builds the HTTP server context. Trust anchors become mandatory
// only when client certificates are required.
func (p *Provisioner) initHTTP(lc listenerConfig, loader *CredentialLoader) error {
	backend := selectBackend(lc.preferNative, p.logger)
	ciphers, protocols, err := p.negotiate(lc, backend)
	if err != nil {
		return err
	}

	material, err := loader.Load(lc, lc.clientAuth == ClientAuthRequire)
	if err != nil {
		return err
	}

	server, err := buildServerContext(
		lc.listener, material, ciphers, protocols, backend.Kind(), lc.clientAuth)
	if err != nil {
		return err
	}

	p.httpServer = server
	p.recordContext(server, material)
	p.logContext(server)
	return nil
}

// negotiate turns the declared cipher and protocol lists of one listener
// into an effective cipher set and protocol range. Ending up with nothing
// enabled is a fatal misconfiguration rather than a silently dysfunctional
// listener.
func (p *Provisioner) negotiate(lc listenerConfig, backend Backend) (CipherSuiteSet, ProtocolRange, error) {
	ciphers := negotiateCipherSuites(lc.ciphers, backend, p.logger)
	if ciphers.Empty() {
		return CipherSuiteSet{}, ProtocolRange{}, NewConfigurationError(lc.keys.ciphers,
			"no supported cipher suites remain for the "+lc.listener.String()+" listener")
	}

	protocols, err := parseProtocols(lc.keys.protocols, lc.protocols)
	if err != nil {
		return CipherSuiteSet{}, ProtocolRange{}, err
	}
	if protocols.Empty() {
		return CipherSuiteSet{}, ProtocolRange{}, NewConfigurationError(lc.keys.protocols,
			"no supported protocols remain for the "+lc.listener.String()+" listener")
	}
	if protocols.enablesPreTLS13() && !ciphers.configurable() {
		return CipherSuiteSet{}, ProtocolRange{}, NewConfigurationError(lc.keys.ciphers,
			"declared cipher suites leave no TLS 1.2 suite for the "+lc.listener.String()+
				" listener, but a protocol below TLSv1.3 is enabled")
	}
	if collapsed := protocols.Collapsed(); len(collapsed) > 0 {
		p.logger.Warn("protocol list has gaps, intermediate versions are enabled as well",
			observability.String("listener", lc.listener.String()),
			observability.Strings("alsoEnabled", collapsed),
		)
	}

	return ciphers, protocols, nil
}

// selectBackend picks the native backend when it is preferred and the
// hardware probe succeeds, the platform backend otherwise.
func selectBackend(preferNative bool, logger observability.Logger) Backend {
	if preferNative {
		probe := ProbeNative(logger)
		if probe.Available {
			return nativeBackend{probe: probe}
		}
		logger.Info("hardware crypto acceleration unavailable, using platform backend")
	}
	return platformBackend{}
}

func (p *Provisioner) recordContext(c *Context, material *CredentialMaterial) {
	if len(material.Chain) > 0 {
		p.metrics.RecordCertificateExpiry(c.Listener(), material.Chain[0].NotAfter)
	}
}

func (p *Provisioner) logContext(c *Context) {
	p.logger.Info("tls context ready",
		observability.String("listener", c.Listener().String()),
		observability.String("backend", string(c.Backend())),
		observability.String("clientAuth", c.ClientAuth().String()),
		observability.Strings("ciphers", c.CipherSuites().Names()),
		observability.Strings("protocols", c.Protocols().Names()),
	)
}

// HTTPEnabled reports whether the HTTP listener serves TLS.
func (p *Provisioner) HTTPEnabled() bool {
	return p.httpServer != nil
}

// TransportEnabled reports whether the transport listener serves TLS.
func (p *Provisioner) TransportEnabled() bool {
	return p.transportServer != nil
}

// HTTPEngine derives a fresh engine for one inbound HTTP connection.
func (p *Provisioner) HTTPEngine() (*Engine, error) {
	if p.httpServer == nil {
		return nil, newInitializationError(ListenerHTTP, "http ssl is not enabled", nil)
	}
	p.metrics.RecordEngineCreated(ListenerHTTP)
	return newServerEngine(p.httpServer, p.metrics), nil
}

// TransportServerEngine derives a fresh engine for one inbound transport
// connection.
func (p *Provisioner) TransportServerEngine() (*Engine, error) {
	if p.transportServer == nil {
		return nil, newInitializationError(ListenerTransportServer, "transport ssl is not enabled", nil)
	}
	p.metrics.RecordEngineCreated(ListenerTransportServer)
	return newServerEngine(p.transportServer, p.metrics), nil
}

// TransportClientEngine derives a fresh engine for one outbound transport
// connection. With a non-empty peerHost the engine verifies the peer
// certificate against that hostname; without one only the chain is checked.
func (p *Provisioner) TransportClientEngine(peerHost string, peerPort int) (*Engine, error) {
	if p.transportClient == nil {
		return nil, newInitializationError(ListenerTransportClient, "transport ssl is not enabled", nil)
	}
	p.metrics.RecordEngineCreated(ListenerTransportClient)
	return newClientEngine(p.transportClient, peerHost, peerPort, p.metrics), nil
}

// HTTPContext returns the immutable HTTP server context, nil when disabled.
func (p *Provisioner) HTTPContext() *Context {
	return p.httpServer
}

// TransportServerContext returns the immutable transport server context,
// nil when disabled.
func (p *Provisioner) TransportServerContext() *Context {
	return p.transportServer
}

// TransportClientContext returns the immutable transport client context,
// nil when disabled.
func (p *Provisioner) TransportClientContext() *Context {
	return p.transportClient
}

// ProviderName names the backend serving the given listener, empty when the
// listener has no TLS context.
func (p *Provisioner) ProviderName(listener Listener) string {
	var c *Context
	switch listener {
	case ListenerHTTP:
		c = p.httpServer
	case ListenerTransportServer:
		c = p.transportServer
	case ListenerTransportClient:
		c = p.transportClient
	}
	if c == nil {
		return ""
	}
	return string(c.Backend())
}
