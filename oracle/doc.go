// Package oracle abstracts the reasoning backend behind a minimal streaming
// interface. An Oracle turns a normalized request (instructions + message
// history + optional tool definitions) into a channel of chunks: partial text
// fragments while streaming, then a final chunk carrying the full text, any
// tool calls and response metadata.
//
// On top of the raw interface the package provides typed judgment helpers
// (RouteQuestion, GradeBinary) that parse the small structured JSON replies
// the routing and grading steps rely on. A malformed structured reply is an
// error, never a silent default.
//
// Concrete backends live in subpackages (openai, anthropic); Scripted is an
// in-memory fake for tests.
package oracle
