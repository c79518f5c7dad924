// Package stream encodes turn event streams as server-sent events.
//
// Each event is one `data: <json>` line followed by a blank line; the payload
// has shape {"type": "token"|"message"|"error", "content": <string|Message>}.
// Every stream ends with the literal sentinel line `data: [DONE]`, whether
// the turn completed, suspended or failed. Encoding failures are isolated per
// message: a malformed message becomes one error event and the stream
// continues.
package stream
