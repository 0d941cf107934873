// Package stage implements the two halves of a pipeline stage: loading an
// ordered, named group of plugin instances from configuration, and running
// that group with per-instance break conditions.
//
// Configuration for a stage stored under key looks like:
//
//	<key> = [
//	  { name = "a", type = "some_type", on_failure_break = true, on_success_break = false },
//	]
//	<key>_default_value = true
//
// A group runs its instances in configuration order. An instance whose
// outcome matches one of its break flags ends the stage with that outcome;
// when no break fires the stage result is the group's default value. Setting
// on_failure_break on every instance gives "all must succeed", setting
// on_success_break on every instance gives "first success wins".
package stage
