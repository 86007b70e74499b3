package knowledge

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// The redis catalog keeps the knowledge sources in Redis.
// The keys namespace is organized as follows:
// - `/<prefix>/knowledge/sources` hash of source ID to JSON encoded SourceInfo
// - `/<prefix>/knowledge/docs/<sourceID>` list of documents of the source

// SourceInfo is the metadata of a source stored in Redis.
type SourceInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// RedisCatalog is a Catalog backed by Redis,
// its sources are searched with the keyword retriever.
type RedisCatalog struct {
	client redis.Cmdable
	prefix string
	limit  int
}

var _ Catalog = (*RedisCatalog)(nil)

// NewRedisCatalog returns a catalog with keys under the prefix.
func NewRedisCatalog(client redis.Cmdable, prefix string) *RedisCatalog {
	return &RedisCatalog{
		client: client,
		prefix: prefix,
		limit:  DefaultLimit,
	}
}

// WithLimit sets the number of documents returned by the retrievers.
func (c *RedisCatalog) WithLimit(limit int) *RedisCatalog {
	if limit > 0 {
		c.limit = limit
	}
	return c
}

func (c *RedisCatalog) sourcesKey() string {
	return path.Join("/", c.prefix, "knowledge", "sources")
}

func (c *RedisCatalog) docsKey(id string) string {
	return path.Join("/", c.prefix, "knowledge", "docs", id)
}

// AddSource adds or replaces the source metadata.
func (c *RedisCatalog) AddSource(ctx context.Context, id string, info *SourceInfo) error {
	if id == "" {
		return errors.New("source ID must not be empty")
	}
	js, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "failed to marshal source info")
	}
	if err = c.client.HSet(ctx, c.sourcesKey(), id, string(js)).Err(); err != nil {
		return errors.Wrapf(err, "failed to add source %s", id)
	}
	return nil
}

// AddDocuments appends documents to the source.
func (c *RedisCatalog) AddDocuments(ctx context.Context, id string, docs ...string) error {
	if len(docs) == 0 {
		return nil
	}
	values := make([]any, len(docs))
	for i, doc := range docs {
		values[i] = doc
	}
	if err := c.client.RPush(ctx, c.docsKey(id), values...).Err(); err != nil {
		return errors.Wrapf(err, "failed to add documents to source %s", id)
	}
	return nil
}

// RemoveSource removes the source and its documents.
func (c *RedisCatalog) RemoveSource(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, c.sourcesKey(), id)
		pipe.Del(ctx, c.docsKey(id))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to remove source %s", id)
	}
	return nil
}

// Documents returns the documents of the source.
func (c *RedisCatalog) Documents(ctx context.Context, id string) ([]string, error) {
	docs, err := c.client.LRange(ctx, c.docsKey(id), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read documents of source %s", id)
	}
	return docs, nil
}

func (c *RedisCatalog) ListSources(ctx context.Context) (map[string]*Source, error) {
	all, err := c.client.HGetAll(ctx, c.sourcesKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge sources")
	}

	res := make(map[string]*Source, len(all))
	for id, js := range all {
		var info SourceInfo
		if err := json.Unmarshal([]byte(js), &info); err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "invalid_source_info",
				"source", id,
				"err", err.Error(),
			)
			continue
		}
		res[id] = &Source{
			Name:        info.Name,
			Description: info.Description,
			Retriever:   SyncRetriever(c.retrieve(id)),
		}
	}
	return res, nil
}

func (c *RedisCatalog) retrieve(id string) SyncRetrieveFunc {
	return func(ctx context.Context, query string) (any, error) {
		docs, err := c.Documents(ctx, id)
		if err != nil {
			return nil, err
		}
		return Search(docs, query, c.limit), nil
	}
}
