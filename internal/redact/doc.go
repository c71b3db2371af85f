// Package redact masks credentials before they reach a terminal or a log:
// GitHub tokens, bearer headers and passwords embedded in connection URLs
// such as a redis:// cache address.
package redact
