// Package output formats command results for display or machine consumption.
//
// Four formats are supported:
//   - text     human-readable terminal output (default)
//   - json     the full structured report
//   - markdown tables and release notes, suitable for a README or wiki page
//   - html     release notes rendered for the website changelog page
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report]. [WriteReport] handles
// destination selection.
package output
