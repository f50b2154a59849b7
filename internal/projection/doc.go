// Package projection turns the tracked network state and a user-provided
// target block into an estimated arrival time.
//
// Parsing never fails loudly: invalid input or a target that has already
// been reached simply produces no projection.
package projection
