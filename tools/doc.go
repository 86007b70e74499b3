// Package tools defines the Tool contract for LLM agents: the normalized Descriptor stored in a registry,
// the sync/async Invoker variant behind every tool, typed Function callables with reflected input schemas,
// and the argument decoding that validates and coerces caller-supplied JSON before invocation.
package tools
