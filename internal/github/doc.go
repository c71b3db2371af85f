// Package github provides cached, read-only access to the GitHub REST API
// for the data the OpenMC site displays: contributors, repository metadata,
// contributor statistics, commits, releases and organization repositories.
//
// Every accessor consults the [cache.Store] first and only calls the API on
// a miss, storing the response body with a resource-specific TTL. Requests
// are anonymous unless a token is configured. An HTTP 403 is reported as a
// [*RateLimitError] and never touches the cache; other non-2xx responses
// become a [*StatusError].
package github
