// Package config defines the format-agnostic configuration tree consumed by
// the pipeline and its plugins, along with the Loader interface implemented
// by the concrete format adapters.
//
// A configuration document is a tree of cty values, mirroring a hierarchical
// parameter server: objects are namespaces, tuples are arrays and primitives
// are parameters. A Scope is a read-only view of one namespace of that tree.
// Concrete loaders, such as for HCL or YAML, are provided in separate
// packages.
package config
