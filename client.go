package meshwire

import (
	"fmt"
	"log/slog"

	"github.com/meshwire/meshwire-go/config"
	"github.com/meshwire/meshwire-go/registry"
	"github.com/meshwire/meshwire-go/routing"
)

// Client provides the main entry point for meshwire-go: one type registry
// and one dispatch core an application shares across its components.
type Client struct {
	registry registry.TypeRegistry
	router   *routing.Router
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for the client and its router.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTypeRegistry replaces the default type registry.
func WithTypeRegistry(reg registry.TypeRegistry) ClientOption {
	return func(c *Client) {
		c.registry = reg
	}
}

// NewClient creates a client with an empty registry and router. Register
// payload types and pathways during single-threaded setup, then share the
// client (or just its router) across goroutines.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		registry: registry.NewTypeRegistry(),
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(c)
	}

	c.router = routing.NewRouter(routing.WithLogger(c.logger))

	return c
}

// Router returns the dispatch core.
func (c *Client) Router() *routing.Router {
	return c.router
}

// TypeRegistry returns the payload type registry.
func (c *Client) TypeRegistry() registry.TypeRegistry {
	return c.registry
}

// RegisterType registers a payload type under its struct name.
func (c *Client) RegisterType(prototype any) error {
	return c.registry.RegisterType(prototype)
}

// LoadTopology loads a TOML link declaration file and materializes it
// against the client's type registry into a configuration-driven topology
// with its own router. Declared payload type names must already be
// registered.
func (c *Client) LoadTopology(path string) (*config.Topology, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	topo, err := config.Build(cfg, c.registry, config.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build topology from %s: %w", path, err)
	}

	return topo, nil
}
