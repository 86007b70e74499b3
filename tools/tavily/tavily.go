// Package tavily provides the web search tool backed by the Tavily API.
package tavily

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/invopop/jsonschema"
)

const (
	// ToolName is the registered name of the web search tool.
	ToolName = "web_search"
	// MaxResults is the default limit of the search results.
	MaxResults = 10
	// APIKeyEnv is the environment variable with the API key,
	// used when the key is not configured.
	APIKeyEnv = "TAVILY_API_KEY"
)

// Config of the web search tool.
type Config struct {
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxResults int    `json:"max_results,omitempty" yaml:"max_results,omitempty"`
}

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=Search Query,description=The query to search web." validate:"required"`
}

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results" yaml:"results" jsonschema:"title=results,description=The results from a web search."`
	Answer  string                      `json:"answer,omitempty" yaml:"answer,omitempty" jsonschema:"title=answer,description=The aggregated answer from a web search."`
}

// GetContent returns JSON representation of the result.
func (r *SearchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}

// Tool is a tool that provides a web search functionality
type Tool struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	params     *jsonschema.Schema
}

var _ tools.Tool[SearchRequest, SearchResult] = (*Tool)(nil)

// New returns the web search tool,
// the API key is taken from TAVILY_API_KEY when not configured.
func New(cfg *Config) (*Tool, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	apikey := cfg.APIKey
	if apikey == "" {
		apikey = os.Getenv(APIKeyEnv)
	}
	if apikey == "" {
		return nil, errors.Newf("%s is not set", APIKeyEnv)
	}

	sc, err := schema.New(reflect.TypeOf(SearchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}

	limit := cfg.MaxResults
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	return &Tool{
		apiKey:     apikey,
		baseURL:    cfg.BaseURL,
		maxResults: limit,
		httpClient: http.DefaultClient,
		params:     sc.Parameters,
	}, nil
}

// WithBaseURL overrides the API endpoint.
func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

// WithHTTPClient overrides the HTTP client.
func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "A tool that provides a web search functionality. Use it to find up to date information on the internet."
}

func (t *Tool) Parameters() any {
	return t.params
}

// MaxResults returns the limit of the search results.
func (t *Tool) MaxResults() int {
	return t.maxResults
}

func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil || req.Query == "" {
		return nil, errors.Wrap(tools.ErrInvalidInput, "empty query")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    t.maxResults,
	}

	searchResp, err := tavilygo.Search(client, searchReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	results := searchResp.Results
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}

	return &SearchResult{
		Results: results,
		Answer:  searchResp.Answer,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	req, err := tools.DecodeArgs[SearchRequest](llmutils.CleanJSON([]byte(input)))
	if err != nil {
		return "", err
	}
	out, err := t.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return out.GetContent(), nil
}
