// Package hcl_adapter reads graph definition files written in HCL and
// translates them into the format-agnostic config.Model.
//
// A file holds any number of `task`, `decision` and `flow` blocks:
//
//	task "double" {
//	  run = input * 2
//	}
//
//	decision "route" {
//	  value    = input
//	  next     = input > 10 ? "big" : "small"
//	  branches = ["big", "small"]
//	}
//
//	flow {
//	  steps = ["double", "route"]
//	}
//
// Expressions are kept unevaluated; the builder package evaluates them at run
// time with the task input bound to `input`.
package hcl_adapter
