// Package registry provides the tools registry: a name to Descriptor map populated at startup.
//
// Functions are registered either directly,
//
//	d, err := reg.Register(tools.NewFunc(calculate, "Calculate two numbers."))
//
// or with a registrar created from options, applied to the function later at its definition site:
//
//	var register = reg.Tool(registry.WithReturnDirect(true))
//	d, err := register(tools.NewFunc(lookup, "Lookup a record."))
//
// Both shapes produce the same Descriptor for the same options.
// Registering an existing name replaces the previous Descriptor.
package registry
