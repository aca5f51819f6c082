// Package logging configures structured logging for bigindex.
//
// Library packages log through log/slog's default logger. The CLI installs a
// handler here that writes to stderr and, with --debug, to a size-rotated
// file under ~/.bigindex/logs/.
package logging
