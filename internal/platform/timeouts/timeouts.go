// Package timeouts holds the durations shared by dicetower servers and
// clients.
package timeouts

import "time"

// GRPCDial caps the wait for a dice peer to report SERVING.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single dice call made by a client command.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// WebSocketIdle closes roll streams that send nothing for this long.
const WebSocketIdle = 2 * time.Minute

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
