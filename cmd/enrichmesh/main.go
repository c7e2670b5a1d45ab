// Package main provides the entry point for the enrichmesh CLI tool.
package main

import "github.com/entigraph/enrichmesh/cmd/enrichmesh/cmd"

func main() {
	cmd.Execute()
}
