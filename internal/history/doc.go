// Package history keeps a ledger of start attempts in a SQLite database so
// that flaky test fixtures can be diagnosed after the fact: which command
// ran, whether it became ready, how long that took and how it ended.
package history
