// Package kgraph provides the knowledge graph lookup tool.
package kgraph

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/graph"
	"github.com/effective-security/toolbox/output"
	"github.com/effective-security/toolbox/tools"
)

const (
	// Hops is the depth of the graph walk from the matched nodes.
	Hops = 2
	// Alias is the name of the graph result in the tool output.
	Alias = "graph"
	// Doc is the description of the tool.
	Doc = "Use this to query knowledge graph."
)

// Request is the input of the knowledge graph tool.
type Request struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=Query,description=The keyword to query knowledge graph."`
}

// Tool queries the knowledge graph engine.
type Tool struct {
	engine graph.Engine
}

// New returns the tool for the graph engine.
func New(engine graph.Engine) *Tool {
	return &Tool{engine: engine}
}

// Function returns the tool function to be registered.
func (t *Tool) Function() *tools.Function {
	return tools.NewFunc(t.queryKnowledgeGraph, Doc)
}

func (t *Tool) queryKnowledgeGraph(ctx context.Context, req *Request) (*output.Output, error) {
	if t.engine == nil {
		return nil, errors.New("knowledge graph is not configured")
	}
	res, err := t.engine.Query(ctx, req.Query, Hops)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query knowledge graph")
	}
	return output.New(res, output.JSON(), output.WithAlias(Alias)), nil
}
