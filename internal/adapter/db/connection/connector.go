package connection

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// ParamsResolver produces connection parameters. *Resolver implements it.
type ParamsResolver interface {
	Resolve(ctx context.Context) (Params, error)
}

// Connector is a database/sql connector that resolves its parameters on the
// first connection attempt. A failed resolution is retried by the next
// attempt; a successful one is kept for the life of the process.
type Connector struct {
	resolver ParamsResolver
	log      *zap.Logger

	mu     sync.Mutex
	params *Params
	target driver.Connector
}

// NewConnector creates a Connector. No parameters are resolved until the
// first call to Resolve or Connect.
func NewConnector(resolver ParamsResolver, log *zap.Logger) *Connector {
	return &Connector{resolver: resolver, log: log}
}

var _ driver.Connector = (*Connector)(nil)

// Resolve returns the connection parameters, resolving them if needed.
func (c *Connector) Resolve(ctx context.Context) (Params, error) {
	params, _, err := c.resolve(ctx)
	return params, err
}

func (c *Connector) resolve(ctx context.Context) (Params, driver.Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params != nil {
		return *c.params, c.target, nil
	}

	params, err := c.resolver.Resolve(ctx)
	if err != nil {
		c.log.Warn("database connection not resolved", zap.Error(err))
		return Params{}, nil, fmt.Errorf("failed to resolve database connection: %w", err)
	}

	cfg, err := pgx.ParseConfig(params.DSN())
	if err != nil {
		return Params{}, nil, fmt.Errorf("invalid database connection parameters: %w", err)
	}

	c.params = &params
	c.target = stdlib.GetConnector(*cfg)
	c.log.Info("database connection resolved", zap.String("target", params.Describe()))
	return params, c.target, nil
}

// Connect opens a new pgx connection.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	_, target, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return target.Connect(ctx)
}

// Driver returns the pgx database/sql driver.
func (c *Connector) Driver() driver.Driver {
	return stdlib.GetDefaultDriver()
}
