// Package server exposes the hub over HTTP.
//
// Endpoints:
//   - POST /v1/chat/stream          - submit a turn, stream events (SSE)
//   - GET  /v1/chat/history/{id}    - thread message history
//   - POST /v1/chat/cancel/{id}     - void a pending interrupt
//   - GET  /v1/agents               - registered agents
//   - GET  /healthz                 - liveness probe
package server
