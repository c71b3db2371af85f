// Openmc serves the GitHub data behind the OpenMC community site from an
// expiring cache.
//
// It reads contributors, releases, commits and repository statistics through
// a cache-first client, renders release notes for the changelog page, and can
// keep the cache warm on an interval.
//
// Usage:
//
//	openmc summary                     # contributors, commits, repositories
//	openmc contributors [owner/repo]   # contributor list
//	openmc changelog -f html           # rendered release notes
//	openmc lines                       # lines added/removed per contributor
//	openmc watch --metrics-addr :2112  # refresh periodically, expose metrics
//	openmc cache show                  # cache statistics
package main
