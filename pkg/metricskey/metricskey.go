package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolCallsSucceeded is base for counter metric for tool calls that returned a result
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	// StatsRetrievalFailed counts knowledge source failures converted to a degraded result
	StatsRetrievalFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_retrieval_failed",
		Help:         "stats_retrieval_failed provides total knowledge retrieval failures",
		RequiredTags: []string{"source"},
	}

	StatsCatalogErrors = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_catalog_errors",
		Help: "stats_catalog_errors provides total failures to list knowledge sources",
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfAssembleTools = metrics.Describe{
		Type: metrics.TypeSample,
		Name: "perf_assemble_tools",
		Help: "perf_assemble_tools provides duration of assembling all available tools",
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAssembleTools,
	&PerfToolCall,
	&StatsCatalogErrors,
	&StatsRetrievalFailed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
