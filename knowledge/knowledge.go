// Package knowledge defines the catalog of knowledge sources available for retrieval,
// and provides in-memory and Redis backed catalogs.
package knowledge

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "knowledge")

//go:generate mockgen -source=knowledge.go -destination=../mocks/mockknowledge/knowledge_mock.gen.go -package mockknowledge

// Catalog provides the currently available knowledge sources.
type Catalog interface {
	// ListSources returns the sources by ID.
	ListSources(ctx context.Context) (map[string]*Source, error)
}

// Source is a knowledge source.
type Source struct {
	// Name is the display name of the source.
	Name string
	// Description describes the content of the source.
	Description string
	// Retriever queries the source.
	Retriever Retriever
}

// SyncRetrieveFunc queries a source and returns the result.
type SyncRetrieveFunc func(ctx context.Context, query string) (any, error)

// AsyncRetrieveFunc queries a source, the result is delivered on the channel.
type AsyncRetrieveFunc func(ctx context.Context, query string) <-chan tools.Result

// Retriever holds exactly one of a SyncRetrieveFunc or an AsyncRetrieveFunc.
type Retriever struct {
	syncFn  SyncRetrieveFunc
	asyncFn AsyncRetrieveFunc
}

// SyncRetriever returns a Retriever for a synchronous function.
func SyncRetriever(fn SyncRetrieveFunc) Retriever {
	return Retriever{syncFn: fn}
}

// AsyncRetriever returns a Retriever for an asynchronous function.
func AsyncRetriever(fn AsyncRetrieveFunc) Retriever {
	return Retriever{asyncFn: fn}
}

// IsAsync returns true if the retrieval function is asynchronous.
func (r Retriever) IsAsync() bool {
	return r.asyncFn != nil
}

// IsValid returns true if the retrieval function is set.
func (r Retriever) IsValid() bool {
	return (r.syncFn != nil) != (r.asyncFn != nil)
}

// Retrieve queries the source, awaiting the result of an asynchronous function.
func (r Retriever) Retrieve(ctx context.Context, query string) (any, error) {
	switch {
	case r.asyncFn != nil:
		return tools.Await(ctx, r.asyncFn(ctx, query))
	case r.syncFn != nil:
		return r.syncFn(ctx, query)
	}
	return nil, errors.New("retriever is not set")
}
