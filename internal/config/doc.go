// Package config defines the format-agnostic model of a graph definition,
// along with the Loader interface that reads it from a concrete source.
//
// The `config.Model` is the single source of truth for the `builder`
// package, which turns it into a runnable `dag.Graph`. Concrete loaders,
// such as the HCL one, live in separate packages.
package config
