package assembler_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/assembler"
	"github.com/effective-security/toolbox/knowledge"
	"github.com/effective-security/toolbox/mocks/mockknowledge"
	"github.com/effective-security/toolbox/registry"
	"github.com/effective-security/toolbox/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type echoRequest struct {
	Text string `json:"text"`
}

func echo(_ context.Context, req *echoRequest) (string, error) {
	return req.Text, nil
}

func newRegistry(t *testing.T) *registry.Registry {
	reg := registry.New()
	_, err := reg.Register(tools.NewFunc(echo, "Echo the text."))
	require.NoError(t, err)
	return reg
}

func staticRetriever(val string) knowledge.Retriever {
	return knowledge.SyncRetriever(func(_ context.Context, query string) (any, error) {
		return val + ":" + query, nil
	})
}

func TestAssembleAll_NoCatalog(t *testing.T) {
	a := assembler.New(newRegistry(t), nil)
	all := a.AssembleAll(context.Background())
	assert.Len(t, all, 1)
	assert.Contains(t, all, "echo")
}

func TestAssembleAll_NoSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(map[string]*knowledge.Source{}, nil)

	reg := newRegistry(t)
	all := assembler.New(reg, catalog).AssembleAll(context.Background())
	assert.Equal(t, reg.Snapshot(), all)
}

func TestAssembleAll_CatalogError(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(nil, errors.New("catalog unavailable"))

	all := assembler.New(newRegistry(t), catalog).AssembleAll(context.Background())
	assert.Len(t, all, 1)
	assert.Contains(t, all, "echo")
}

func TestAssembleAll_Sources(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(map[string]*knowledge.Source{
		"3f2a9c1e-5b7d-4e21-9a0c-7d1f2e3a4b5c": {
			Name:        "Products",
			Description: "Product catalog\n   and pricing.",
			Retriever:   staticRetriever("products"),
		},
		"kb-1": {
			Name:        "FAQ",
			Description: "Frequently asked questions",
			Retriever: knowledge.AsyncRetriever(func(_ context.Context, query string) <-chan tools.Result {
				return tools.Resolved("faq:"+query, nil)
			}),
		},
	}, nil).Times(2)

	ctx := context.Background()
	a := assembler.New(newRegistry(t), catalog)
	all := a.AssembleAll(ctx)
	require.Len(t, all, 3)

	d := all["retrieve_3f2a9c1e"]
	require.NotNil(t, d)
	assert.Equal(t, "Retrieve3f2a9c1e", d.Title())
	assert.Equal(t, "Use the Products knowledge base for retrieval. Description of this knowledge base: Product catalog and pricing.", d.Description())
	assert.False(t, d.ReturnDirect())
	assert.True(t, d.Target().IsAsync())

	sc := d.Schema()
	require.NotNil(t, sc)
	assert.Equal(t, []string{"query_text"}, sc.Required)
	prop, ok := sc.Properties.Get("query_text")
	require.True(t, ok)
	assert.Equal(t, "string", prop.Type)
	assert.Equal(t, assembler.QueryTextDescription, prop.Description)

	res, err := d.Call(ctx, `{"query_text":"price"}`)
	require.NoError(t, err)
	assert.Equal(t, "products:price", res)

	faq := all["retrieve_kb_1"]
	require.NotNil(t, faq)
	res, err = faq.Call(ctx, `{"query_text":"refund"}`)
	require.NoError(t, err)
	assert.Equal(t, "faq:refund", res)

	_, err = faq.Call(ctx, `{}`)
	assert.ErrorIs(t, err, tools.ErrInvalidInput)

	// stable across calls
	again := a.AssembleAll(ctx)
	require.Len(t, again, 3)
	for name, d := range all {
		d2 := again[name]
		require.NotNil(t, d2, name)
		assert.Equal(t, d.Title(), d2.Title())
		assert.Equal(t, d.Description(), d2.Description())
		assert.Equal(t, d.Schema(), d2.Schema())
	}
}

func TestAssembleAll_FailureIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(map[string]*knowledge.Source{
		"broken01": {
			Name: "Broken",
			Retriever: knowledge.SyncRetriever(func(_ context.Context, _ string) (any, error) {
				return nil, errors.New("connection refused")
			}),
		},
		"panic001": {
			Name: "Panic",
			Retriever: knowledge.AsyncRetriever(func(_ context.Context, _ string) <-chan tools.Result {
				panic("boom")
			}),
		},
		"healthy1": {
			Name:      "Healthy",
			Retriever: staticRetriever("ok"),
		},
		"invalid1": {
			Name: "Invalid",
		},
	}, nil)

	ctx := context.Background()
	all := assembler.New(newRegistry(t), catalog).AssembleAll(ctx)
	assert.Len(t, all, 4)
	assert.NotContains(t, all, "retrieve_invalid1")

	res, err := all["retrieve_broken01"].Call(ctx, `{"query_text":"q"}`)
	require.NoError(t, err)
	assert.Equal(t, "retrieval from knowledge base broken01 failed: connection refused", res)

	res, err = all["retrieve_panic001"].Call(ctx, `{"query_text":"q"}`)
	require.NoError(t, err)
	assert.Equal(t, "retrieval from knowledge base panic001 failed: panic: boom", res)

	res, err = all["retrieve_healthy1"].Call(ctx, `{"query_text":"q"}`)
	require.NoError(t, err)
	assert.Equal(t, "ok:q", res)
}

func TestAssembleAll_Collisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(map[string]*knowledge.Source{
		"abcdefgh-2": {Name: "Two", Retriever: staticRetriever("two")},
		"abcdefgh-1": {Name: "One", Retriever: staticRetriever("one")},
	}, nil).Times(3)

	a := assembler.New(registry.New(), catalog)
	for range 3 {
		all := a.AssembleAll(context.Background())
		require.Len(t, all, 1)
		res, err := all["retrieve_abcdefgh"].Call(context.Background(), `{"query_text":"q"}`)
		require.NoError(t, err)
		assert.Equal(t, "two:q", res)
	}
}

func TestAssembleAll_StaticOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockknowledge.NewMockCatalog(ctrl)
	catalog.EXPECT().ListSources(gomock.Any()).Return(map[string]*knowledge.Source{
		"echo": {Name: "Echo", Retriever: staticRetriever("kb")},
	}, nil)

	reg := newRegistry(t)
	all := assembler.New(reg, catalog).AssembleAll(context.Background())
	assert.Len(t, all, 2)
	assert.Contains(t, all, "retrieve_echo")
	// registry is not modified
	assert.Equal(t, 1, reg.Len())
}

func TestToolName(t *testing.T) {
	tcs := []struct {
		id  string
		exp string
	}{
		{"3f2a9c1e-5b7d", "retrieve_3f2a9c1e"},
		{"short", "retrieve_short"},
		{"kb-1", "retrieve_kb_1"},
		{"abcdefgh", "retrieve_abcdefgh"},
		{"知识库", "retrieve____"},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.exp, assembler.ToolName(tc.id), tc.id)
	}
}
