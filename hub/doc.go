// Package hub is the entry point tying agents, checkpoints and event streams
// together. Callers submit turns (new input or resume decisions) against a
// thread; the hub routes each turn to the registered agent, enforces one
// in-flight turn per thread and hands back the live event stream.
package hub
