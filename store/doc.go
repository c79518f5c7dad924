// Package store defines the retrieval interfaces the control loop depends
// on: similarity search over an indexed document collection and the web
// search fallback. Both are external collaborators; implementations live in
// subpackages and tests use fakes.
package store
