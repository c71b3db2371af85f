// Package stats derives community numbers from the GitHub façade:
// merged contributor lists, a repository summary and per-contributor
// line counts.
package stats
