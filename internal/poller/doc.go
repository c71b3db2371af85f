// Package poller runs a function on a fixed interval with explicit
// start and stop. Runs never overlap and errors are reported to a
// callback instead of being dropped.
package poller
