package neo4jdb

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

const (
	maxAttempts = 5
	maxBackoff  = time.Second
)

// Config is resolved by the process entry point; the client never
// reaches into the environment itself.
type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	TimeoutSec  int
	MaxPoolSize int
}

// Client executes parameterized Cypher against a single logical
// database. It owns connection lifecycle and the bounded retry policy
// for transient driver failures; it never builds query text.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// WriteSummary reports the mutation counters of a write transaction.
type WriteSummary struct {
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4jdb: uri required")
	}
	user := cfg.User
	if user == "" {
		user = "neo4j"
	}
	timeoutSec := cfg.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	maxPool := cfg.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	auth := neo4j.BasicAuth(user, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = maxPool
		c.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

// Read runs cypher in a managed read transaction and flattens each
// record into a key/value map.
func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	var rows []map[string]any
	err := c.withRetry(ctx, func() error {
		session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
			AccessMode:   neo4j.AccessModeRead,
			DatabaseName: c.Database,
		})
		defer session.Close(ctx)

		out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			records, err := res.Collect(ctx)
			if err != nil {
				return nil, err
			}
			collected := make([]map[string]any, 0, len(records))
			for _, rec := range records {
				collected = append(collected, rec.AsMap())
			}
			return collected, nil
		})
		if err != nil {
			return err
		}
		rows = out.([]map[string]any)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Write runs cypher in a managed write transaction; the statement is
// applied atomically or not at all.
func (c *Client) Write(ctx context.Context, cypher string, params map[string]any) (WriteSummary, error) {
	var summary WriteSummary
	err := c.withRetry(ctx, func() error {
		session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
			AccessMode:   neo4j.AccessModeWrite,
			DatabaseName: c.Database,
		})
		defer session.Close(ctx)

		out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			rs, err := res.Consume(ctx)
			if err != nil {
				return nil, err
			}
			counters := rs.Counters()
			return WriteSummary{
				NodesCreated:         counters.NodesCreated(),
				RelationshipsCreated: counters.RelationshipsCreated(),
				PropertiesSet:        counters.PropertiesSet(),
			}, nil
		})
		if err != nil {
			return err
		}
		summary = out.(WriteSummary)
		return nil
	})
	if err != nil {
		return WriteSummary{}, err
	}
	return summary, nil
}

func (c *Client) withRetry(ctx context.Context, run func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = run()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == maxAttempts {
			return err
		}
		delay := jitteredBackoff()
		c.log.Warn("transient query failure, retrying",
			"attempt", attempt, "delay_ms", delay.Milliseconds(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func retryable(err error) bool {
	return neo4j.IsRetryable(err) || neo4j.IsConnectivityError(err)
}

// Randomized delay up to maxBackoff; full jitter so concurrent callers
// hitting the same transient fault do not reconnect in lockstep.
func jitteredBackoff() time.Duration {
	return time.Duration(rand.Int63n(int64(maxBackoff)))
}
