//go:build linux

package process

import "github.com/prometheus/procfs"

// groupHasLiveMember reports whether process group pgid has a member that
// is not a zombie. Orphaned members are reparented to init, and in
// containers without a reaping init their zombies are never collected.
// When /proc cannot be read the group counts as live.
func groupHasLiveMember(pgid int) bool {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return true
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return true
	}
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// Exited between listing and reading.
			continue
		}
		if stat.PGRP == pgid && stat.State != "Z" {
			return true
		}
	}
	return false
}
