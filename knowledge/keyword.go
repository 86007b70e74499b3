package knowledge

import (
	"context"
	"slices"
	"strings"

	"github.com/effective-security/toolbox/output"
)

// DefaultLimit is the default number of documents returned by a keyword retriever.
const DefaultLimit = 5

// DocumentsAlias is the alias of the retrieved documents in the Output.
const DocumentsAlias = "documents"

// Document is a retrieved document.
type Document struct {
	Content string `json:"content" yaml:"content"`
	Score   int    `json:"score" yaml:"score"`
}

// KeywordRetriever returns a Retriever that scores documents by the number of query term occurrences.
func KeywordRetriever(docs []string, limit int) Retriever {
	return SyncRetriever(func(_ context.Context, query string) (any, error) {
		return Search(docs, query, limit), nil
	})
}

// Search returns the documents matching the query terms, the best first,
// as JSON Output with the documents aliased.
func Search(docs []string, query string, limit int) *output.Output {
	if limit <= 0 {
		limit = DefaultLimit
	}
	terms := strings.Fields(strings.ToLower(query))

	found := []*Document{}
	for _, doc := range docs {
		lower := strings.ToLower(doc)
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score > 0 {
			found = append(found, &Document{Content: doc, Score: score})
		}
	}
	slices.SortStableFunc(found, func(a, b *Document) int {
		return b.Score - a.Score
	})
	if len(found) > limit {
		found = found[:limit]
	}

	return output.New(found,
		output.JSON(),
		output.WithAlias(DocumentsAlias),
		output.WithExtra("query", query),
	)
}
