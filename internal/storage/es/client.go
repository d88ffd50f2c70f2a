package es

import (
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ClientConfig holds connection parameters for the search index.
type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
	// RequestTimeout bounds every index round-trip. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// DefaultRequestTimeout caps index calls so a slow cluster cannot hold
// requests open indefinitely.
const DefaultRequestTimeout = 30 * time.Second

func (c ClientConfig) timeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return DefaultRequestTimeout
}

func newClient(config ClientConfig) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	return elasticsearch.NewClient(cfg)
}
