// Package server wires the dice runtime: the gRPC API with health checks and
// the HTTP API with metrics and the roll websocket.
package server
