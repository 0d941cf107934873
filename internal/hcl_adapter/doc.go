// Package hcl_adapter implements config.Loader for HCL native syntax.
//
// Every top-level attribute of a file becomes a key of the root namespace.
// Object constructor expressions become nested namespaces and tuple
// constructors become arrays, so a pipeline is configured as:
//
//	gpp = {
//	  tolerance = 0.2
//	  planning = [
//	    { name = "line", type = "straight_line", on_success_break = true },
//	  ]
//	  line = { step = 0.05 }
//	}
//
// Expressions are evaluated without variables or functions; the document is
// data, not a program.
package hcl_adapter
