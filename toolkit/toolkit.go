// Package toolkit owns the tools of an agent: it loads the configuration,
// registers the built-in tools and assembles them with the knowledge sources.
package toolkit

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/assembler"
	"github.com/effective-security/toolbox/graph"
	"github.com/effective-security/toolbox/knowledge"
	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/toolbox/registry"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/calculator"
	"github.com/effective-security/toolbox/tools/kgraph"
	"github.com/effective-security/toolbox/tools/tavily"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "toolkit")

// Callback receives the events of the tools invoked by the toolkit.
type Callback interface {
	tools.Callback
	OnToolNotFound(ctx context.Context, name string)
}

// Toolkit provides the tools available for an agent turn.
type Toolkit struct {
	Registry  *registry.Registry
	Assembler *assembler.Assembler
	Catalog   knowledge.Catalog
	Graph     graph.Engine

	callback Callback
	closers  []func() error
}

// New returns Toolkit with the built-in tools registered.
// The catalog and the graph engine are optional.
func New(cfg *Config, catalog knowledge.Catalog, engine graph.Engine) (*Toolkit, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	reg := registry.New()
	if _, err := reg.Register(calculator.New()); err != nil {
		return nil, err
	}
	if _, err := reg.Register(kgraph.New(engine).Function()); err != nil {
		return nil, err
	}
	if cfg.EnableWebSearch {
		ws, err := tavily.New(&cfg.WebSearch)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create web search tool")
		}
		if _, err = reg.RegisterTool(ws); err != nil {
			return nil, err
		}
	}

	logger.KV(xlog.INFO,
		"status", "registered",
		"tools", reg.Names(),
	)

	return &Toolkit{
		Registry:  reg,
		Assembler: assembler.New(reg, catalog),
		Catalog:   catalog,
		Graph:     engine,
	}, nil
}

// Load returns Toolkit for the configuration file,
// the knowledge sources and the graph are created from the configuration.
func Load(ctx context.Context, file string) (*Toolkit, error) {
	cfg, err := LoadConfig(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config: %s", file)
	}

	var client *redis.Client
	var rc redis.Cmdable
	if cfg.Knowledge.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Knowledge.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid redis_url")
		}
		client = redis.NewClient(opts)
		rc = client
	}

	closeClient := func() error {
		if client == nil {
			return nil
		}
		return client.Close()
	}

	catalog, err := NewCatalog(ctx, &cfg.Knowledge, rc)
	if err != nil {
		_ = closeClient()
		return nil, err
	}

	tk, err := New(cfg, catalog, NewGraph(&cfg.Graph))
	if err != nil {
		_ = closeClient()
		return nil, err
	}
	tk.closers = append(tk.closers, closeClient)
	return tk, nil
}

// NewCatalog returns the knowledge catalog with the configured sources,
// the Redis catalog is used when the client is provided.
// Sources configured without ID are assigned a random UUID.
func NewCatalog(ctx context.Context, cfg *KnowledgeConfig, client redis.Cmdable) (knowledge.Catalog, error) {
	for _, src := range cfg.Sources {
		if src.ID == "" {
			src.ID = uuid.NewString()
		}
	}

	if client != nil {
		rc := knowledge.NewRedisCatalog(client, cfg.Prefix).WithLimit(cfg.MaxDocuments)
		for _, src := range cfg.Sources {
			err := rc.AddSource(ctx, src.ID, &knowledge.SourceInfo{
				Name:        src.Name,
				Description: src.Description,
			})
			if err != nil {
				return nil, err
			}
			if err = rc.AddDocuments(ctx, src.ID, src.Documents...); err != nil {
				return nil, err
			}
		}
		return rc, nil
	}

	mc := knowledge.NewMemoryCatalog()
	for _, src := range cfg.Sources {
		err := mc.Add(src.ID, &knowledge.Source{
			Name:        src.Name,
			Description: src.Description,
			Retriever:   knowledge.KeywordRetriever(src.Documents, cfg.MaxDocuments),
		})
		if err != nil {
			return nil, err
		}
	}
	return mc, nil
}

// NewGraph returns the in-memory knowledge graph with the configured triples.
func NewGraph(cfg *GraphConfig) *graph.MemoryGraph {
	return graph.NewMemoryGraph(cfg.Triples...)
}

// Tools returns all tools available for the agent turn.
func (t *Toolkit) Tools(ctx context.Context) map[string]*tools.Descriptor {
	return t.Assembler.AssembleAll(ctx)
}

// WithCallback sets the handler of the tool invocation events.
func (t *Toolkit) WithCallback(callback Callback) *Toolkit {
	t.callback = callback
	return t
}

// Call invokes the tool by name with LLM provided input.
func (t *Toolkit) Call(ctx context.Context, name, input string) (string, error) {
	d, ok := t.Tools(ctx)[name]
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", name,
			"status", "not_found",
		)
		if t.callback != nil {
			t.callback.OnToolNotFound(ctx, name)
		}
		return "", errors.Newf("tool not found: %s", name)
	}

	if t.callback != nil {
		t.callback.OnToolStart(ctx, d, input)
	}
	res, err := d.Call(ctx, input)
	if t.callback != nil {
		if err != nil {
			t.callback.OnToolError(ctx, d, input, err)
		} else {
			t.callback.OnToolEnd(ctx, d, input, res)
		}
	}
	return res, err
}

// Close releases the resources.
func (t *Toolkit) Close() error {
	var err error
	for _, closer := range t.closers {
		err = errors.CombineErrors(err, closer())
	}
	t.closers = nil
	return err
}
