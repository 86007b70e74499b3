package toolkit

import (
	"github.com/effective-security/toolbox/graph"
	"github.com/effective-security/toolbox/tools/tavily"
	"github.com/effective-security/x/configloader"
)

// Config of the toolkit.
type Config struct {
	// EnableWebSearch specifies to register the web search tool
	EnableWebSearch bool `json:"enable_web_search" yaml:"enable_web_search"`
	// WebSearch specifies the web search tool options
	WebSearch tavily.Config `json:"web_search" yaml:"web_search"`
	// Knowledge specifies the knowledge sources
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
	// Graph specifies the knowledge graph
	Graph GraphConfig `json:"graph" yaml:"graph"`
}

// KnowledgeConfig specifies the knowledge catalog.
type KnowledgeConfig struct {
	// RedisURL specifies the Redis server with the knowledge sources,
	// if not set the sources are kept in memory.
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	// Prefix specifies the namespace of the Redis keys
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// Sources specifies the sources to add on start
	Sources []*SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty"`
	// MaxDocuments specifies the number of documents returned per retrieval
	MaxDocuments int `json:"max_documents,omitempty" yaml:"max_documents,omitempty"`
}

// SourceConfig specifies a knowledge source.
type SourceConfig struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Documents   []string `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// GraphConfig specifies the knowledge graph.
type GraphConfig struct {
	Triples []*graph.Triple `json:"triples,omitempty" yaml:"triples,omitempty"`
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
