// Package logging builds the process logger: colored text through tint
// on a terminal, plain text otherwise, or JSON.
package logging
