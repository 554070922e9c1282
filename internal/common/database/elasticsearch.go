// internal/common/database/elasticsearch.go
package database

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"founder-intake/internal/common/config"
)

// NewElasticsearchClient builds a client from config. Connectivity is
// verified lazily by the first request.
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	return client, nil
}
