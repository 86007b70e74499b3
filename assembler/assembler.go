// Package assembler produces the set of all tools available for an agent turn:
// the static registry merged with one retrieval tool per available knowledge source.
package assembler

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/knowledge"
	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/registry"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "assembler")

const (
	// NamePrefix is the name prefix of knowledge retrieval tools.
	NamePrefix = "retrieve_"
	// IDPrefixLen is the number of source ID characters used in the tool name.
	IDPrefixLen = 8
	// QueryTextDescription is the guidance for the query_text argument:
	// the query should be keywords that help to answer the question,
	// not the original user input.
	QueryTextDescription = "查询的关键词，查询的时候，应该尽量以可能帮助回答这个问题的关键词进行查询，不要直接使用用户的原始输入去查询。"
)

// RetrieveRequest is the input of knowledge retrieval tools.
type RetrieveRequest struct {
	QueryText string `json:"query_text" jsonschema:"description=查询的关键词，查询的时候，应该尽量以可能帮助回答这个问题的关键词进行查询，不要直接使用用户的原始输入去查询。"`
}

// RetrieveParameters returns the input schema shared by all knowledge retrieval tools.
var RetrieveParameters = sync.OnceValues(func() (*jsonschema.Schema, error) {
	s, err := schema.New(reflect.TypeOf(RetrieveRequest{}))
	if err != nil {
		return nil, err
	}
	return s.Parameters, nil
})

// Assembler assembles the tools.
type Assembler struct {
	registry *registry.Registry
	catalog  knowledge.Catalog
}

// New returns Assembler for the static registry and the knowledge catalog,
// the catalog is optional.
func New(reg *registry.Registry, catalog knowledge.Catalog) *Assembler {
	return &Assembler{
		registry: reg,
		catalog:  catalog,
	}
}

// AssembleAll returns a new map of all available tools by name.
// The knowledge catalog is queried on every call, a failure to list the sources
// is logged and only the static tools are returned.
func (a *Assembler) AssembleAll(ctx context.Context) map[string]*tools.Descriptor {
	started := time.Now()
	defer metricskey.PerfAssembleTools.MeasureSince(started)

	all := a.registry.Snapshot()
	if a.catalog == nil {
		return all
	}

	sources, err := a.catalog.ListSources(ctx)
	if err != nil {
		metricskey.StatsCatalogErrors.IncrCounter(1)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "list_sources",
			"err", err.Error(),
		)
		return all
	}

	sc, err := RetrieveParameters()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "retrieve_schema",
			"err", err.Error(),
		)
		return all
	}

	static := len(all)
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	// sorted, so the name collisions are resolved the same way on every call
	slices.Sort(ids)

	for _, id := range ids {
		src := sources[id]
		if src == nil || !src.Retriever.IsValid() {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "invalid_source",
				"source", id,
			)
			continue
		}
		d := NewRetrieverTool(id, src, sc)
		all[d.Name()] = d
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "assembled",
		"static", static,
		"sources", len(ids),
		"total", len(all),
	)
	return all
}

// NewRetrieverTool returns the retrieval tool for the knowledge source.
func NewRetrieverTool(id string, src *knowledge.Source, sc *jsonschema.Schema) *tools.Descriptor {
	name := ToolName(id)
	description := fmt.Sprintf("Use the %s knowledge base for retrieval.\nDescription of this knowledge base:\n%s",
		src.Name, src.Description)

	return tools.NewDescriptor(name, sc, tools.Async(retrieve(id, name, src.Retriever))).
		WithTitle(registry.TitleFromName(name)).
		WithDescription(registry.NormalizeDescription(description))
}

// ToolName returns the tool name for the source ID,
// characters not allowed in tool names are replaced with underscore.
func ToolName(id string) string {
	rs := []rune(id)
	if len(rs) > IDPrefixLen {
		rs = rs[:IDPrefixLen]
	}
	for i, r := range rs {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			rs[i] = '_'
		}
	}
	return NamePrefix + string(rs)
}

// retrieve returns the invocation target of the retrieval tool,
// the retriever failures are returned as a text result.
func retrieve(id, tool string, r knowledge.Retriever) tools.AsyncFunc {
	return func(ctx context.Context, args []byte) <-chan tools.Result {
		req, err := tools.DecodeArgs[RetrieveRequest](args)
		if err != nil {
			return tools.Resolved(nil, err)
		}
		if !r.IsAsync() {
			return tools.Resolved(safeRetrieve(ctx, id, tool, r, req.QueryText), nil)
		}

		ch := make(chan tools.Result, 1)
		go func() {
			defer close(ch)
			ch <- tools.Result{Value: safeRetrieve(ctx, id, tool, r, req.QueryText)}
		}()
		return ch
	}
}

func safeRetrieve(ctx context.Context, id, tool string, r knowledge.Retriever, query string) (res any) {
	defer func() {
		if rec := recover(); rec != nil {
			res = failure(ctx, id, tool, errors.Newf("panic: %v", rec))
		}
	}()

	v, err := r.Retrieve(ctx, query)
	if err != nil {
		return failure(ctx, id, tool, err)
	}
	return v
}

func failure(ctx context.Context, id, tool string, err error) string {
	metricskey.StatsRetrievalFailed.IncrCounter(1, id)
	logger.ContextKV(ctx, xlog.ERROR,
		"source", id,
		"tool", tool,
		"err", err.Error(),
	)
	return FailureMessage(id, err)
}

// FailureMessage returns the text result of a failed retrieval.
func FailureMessage(id string, err error) string {
	return fmt.Sprintf("retrieval from knowledge base %s failed: %s", id, strings.TrimSpace(err.Error()))
}
