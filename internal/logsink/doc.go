// Package logsink writes the transcript of a monitored process to a file.
//
// A transcript is a fixed header (title banner, command, optional reference,
// blank line) followed by one tagged line per line of process output and a
// final EXIT CODE line. The sink never filters or rewrites content.
//
// The transcript path is guarded by an exclusive advisory lock on a sibling
// "<path>.lock" file so that two controllers, even in different test
// binaries, cannot interleave writes into the same file.
package logsink
