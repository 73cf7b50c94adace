// Package service runs the dice MCP server over stdio or streamable HTTP.
//
// Tool semantics live in the domain package; this package owns the dice
// gRPC connection and the transport lifecycle.
package service
