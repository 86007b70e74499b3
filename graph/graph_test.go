package graph_test

import (
	"context"
	"testing"

	"github.com/effective-security/toolbox/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGraph(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemoryGraph(
		&graph.Triple{Subject: "Go", Predicate: "designed_by", Object: "Rob Pike"},
		&graph.Triple{Subject: "Rob Pike", Predicate: "worked_at", Object: "Bell Labs"},
		&graph.Triple{Subject: "Bell Labs", Predicate: "created", Object: "Unix"},
		&graph.Triple{Subject: "Rust", Predicate: "designed_by", Object: "Graydon Hoare"},
		nil,
		&graph.Triple{Subject: "", Object: "ignored"},
	)

	res, err := g.Query(ctx, "go", 2)
	require.NoError(t, err)
	r := res.(*graph.Result)
	assert.Equal(t, []string{"Bell Labs", "Go", "Rob Pike"}, r.Nodes)
	require.Len(t, r.Triples, 2)
	assert.Equal(t, "designed_by", r.Triples[0].Predicate)
	assert.Equal(t, "worked_at", r.Triples[1].Predicate)

	res, err = g.Query(ctx, "GO", 0)
	require.NoError(t, err)
	r = res.(*graph.Result)
	assert.Equal(t, []string{"Go"}, r.Nodes)
	assert.Empty(t, r.Triples)

	res, err = g.Query(ctx, "unix", 1)
	require.NoError(t, err)
	r = res.(*graph.Result)
	assert.Equal(t, []string{"Bell Labs", "Unix"}, r.Nodes)

	res, err = g.Query(ctx, "python", 2)
	require.NoError(t, err)
	r = res.(*graph.Result)
	assert.Empty(t, r.Nodes)
	assert.Empty(t, r.Triples)

	_, err = g.Query(ctx, " ", 2)
	assert.EqualError(t, err, "keyword must not be empty")

	_, err = g.Query(ctx, "go", -1)
	assert.EqualError(t, err, "invalid hops: -1")

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.Query(cctx, "go", 2)
	assert.Error(t, err)
}
