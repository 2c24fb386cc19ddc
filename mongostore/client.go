package mongostore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Client provides MongoDB connectivity for collections.
type Client struct {
	client   *mongo.Client
	database string
	logger   *zap.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Connect creates a client, checks connectivity with a ping and attaches the
// command monitor configured by cfg.CommandLog.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ServerSelectionTimeout <= 0 {
		cfg.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = DefaultOperationTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetMonitor(NewCommandMonitor(log, cfg.CommandLog))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("mongodb connection established", zap.String("database", cfg.Database))

	return NewClient(client, cfg.Database, cfg.OperationTimeout, log), nil
}

// NewClient wraps an already connected driver client.
func NewClient(client *mongo.Client, database string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		client:   client,
		database: database,
		logger:   log,
		timeout:  timeout,
	}
}

func (c *Client) Client() *mongo.Client {
	return c.client
}

func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.database)
}

func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// OperationTimeout is the deadline applied to operations whose context has
// none.
func (c *Client) OperationTimeout() time.Duration {
	return c.timeout
}

func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb client is closed")
	}

	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}

	return nil
}

func withOperationTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
