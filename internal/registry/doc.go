// Package registry provides the central "glue" for the plugin system.
//
// The Registry is responsible for storing mappings between the string
// identifiers used in configuration (e.g., "straight_line") and the compiled Go
// factories that construct the matching plugin. There is one Catalog per
// plugin category and the category is fixed by the catalog's Go type
// parameter, so a planning catalog can only ever hand out planners.
//
// During application startup, the registry is populated by the compiled-in
// modules. It is not safe to register types concurrently with lookups.
package registry
