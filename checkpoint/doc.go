// Package checkpoint provides CheckpointStore implementations.
//
// The in-memory store backs tests and single-process demos; the redis
// subpackage persists checkpoints across restarts so suspended threads
// survive a process crash.
package checkpoint
