package opcua

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the client.
type Option func(*clientOptions)

type clientOptions struct {
	// Connection settings
	endpoint string
	timeout  time.Duration

	// Session settings
	sessionName    string
	sessionTimeout time.Duration

	// Reconnection settings
	autoReconnect    bool
	reconnectBackoff time.Duration
	maxRetries       int

	// Logging
	logger *slog.Logger

	// Application description
	applicationURI  string
	productURI      string
	applicationName string
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		timeout:          DefaultTimeout,
		sessionName:      "OPC UA Client Session",
		sessionTimeout:   time.Hour,
		autoReconnect:    false,
		reconnectBackoff: 1 * time.Second,
		maxRetries:       3,
		logger:           slog.Default(),
		applicationURI:   "urn:edgeo:opcua:client",
		productURI:       "urn:edgeo:opcua",
		applicationName:  "Edgeo OPC UA Client",
	}
}

// WithEndpoint sets the endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithTimeout sets the timeout for operations.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithSessionName sets the session name.
func WithSessionName(name string) Option {
	return func(o *clientOptions) {
		o.sessionName = name
	}
}

// WithSessionTimeout sets the session timeout.
func WithSessionTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.sessionTimeout = d
	}
}

// WithAutoReconnect enables automatic reconnection on connection loss.
func WithAutoReconnect(enabled bool) Option {
	return func(o *clientOptions) {
		o.autoReconnect = enabled
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithApplicationURI sets the client application URI.
func WithApplicationURI(uri string) Option {
	return func(o *clientOptions) {
		o.applicationURI = uri
	}
}

// WithApplicationName sets the client application name.
func WithApplicationName(name string) Option {
	return func(o *clientOptions) {
		o.applicationName = name
	}
}

// ServerOption is a functional option for configuring the server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	endpoint    string
	maxConns    int
	readTimeout time.Duration

	// View-service operation limits
	limits OperationLimits

	// Security
	certificate []byte

	// Logging
	logger *slog.Logger

	// Application description
	applicationURI  string
	productURI      string
	applicationName string
}

func defaultServerOptions() *serverOptions {
	return &serverOptions{
		maxConns:    100,
		readTimeout: 60 * time.Second,
		limits: OperationLimits{
			MaxContinuationPointsPerSession: DefaultMaxContinuationPoints,
		},
		logger:          slog.Default(),
		applicationURI:  "urn:edgeo:opcua:server",
		productURI:      "urn:edgeo:opcua",
		applicationName: "Edgeo OPC UA Server",
	}
}

// WithMaxConnections sets the maximum number of concurrent connections.
func WithMaxConnections(n int) ServerOption {
	return func(o *serverOptions) {
		o.maxConns = n
	}
}

// WithReadTimeout sets the per-connection read timeout.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.readTimeout = d
	}
}

// WithMaxNodesPerBrowse caps the number of browse descriptions accepted in a
// single Browse request. Zero means no limit.
func WithMaxNodesPerBrowse(n uint32) ServerOption {
	return func(o *serverOptions) {
		o.limits.MaxNodesPerBrowse = n
	}
}

// WithMaxReferencesPerNode caps the number of references a single browse
// returns before it is paginated through a continuation point. Zero means no
// server cap.
func WithMaxReferencesPerNode(n uint32) ServerOption {
	return func(o *serverOptions) {
		o.limits.MaxReferencesPerNode = n
	}
}

// WithMaxNodesPerTranslate caps the number of browse paths accepted in a
// single TranslateBrowsePathsToNodeIds request. Zero means no limit.
func WithMaxNodesPerTranslate(n uint32) ServerOption {
	return func(o *serverOptions) {
		o.limits.MaxNodesPerTranslateBrowsePathsToNodeIds = n
	}
}

// WithMaxNodesPerRegisterNodes caps the number of node IDs accepted in a
// single RegisterNodes or UnregisterNodes request. Zero means no limit.
func WithMaxNodesPerRegisterNodes(n uint32) ServerOption {
	return func(o *serverOptions) {
		o.limits.MaxNodesPerRegisterNodes = n
	}
}

// WithMaxContinuationPoints sets the per-session continuation-point budget.
func WithMaxContinuationPoints(n int) ServerOption {
	return func(o *serverOptions) {
		o.limits.MaxContinuationPointsPerSession = n
	}
}

// WithServerCertificate sets the server certificate (DER encoded).
func WithServerCertificate(cert []byte) ServerOption {
	return func(o *serverOptions) {
		o.certificate = cert
	}
}

// WithServerLogger sets the logger for the server.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// WithServerApplicationURI sets the server application URI.
func WithServerApplicationURI(uri string) ServerOption {
	return func(o *serverOptions) {
		o.applicationURI = uri
	}
}

// WithServerProductURI sets the server product URI.
func WithServerProductURI(uri string) ServerOption {
	return func(o *serverOptions) {
		o.productURI = uri
	}
}

// WithServerApplicationName sets the server application name.
func WithServerApplicationName(name string) ServerOption {
	return func(o *serverOptions) {
		o.applicationName = name
	}
}
