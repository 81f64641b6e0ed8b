// Package readyproc manages one external process started to support
// automated tests: a dev server, a mock backend, an emulator.
//
// The process is started through the shell. Start blocks until a line on
// its stdout matches the ready pattern, or fails if the process exits
// first. Stop terminates the process together with everything it spawned.
// All output can be kept in a transcript file.
//
// # Basic Usage
//
//	import "github.com/giantswarm/readyproc"
//
//	ctx := context.Background()
//
//	proc, err := readyproc.New(
//	    readyproc.WithCommand("npm start"),
//	    readyproc.WithWaitForPattern(`Listening on port \d+`),
//	    readyproc.WithSaveLogTo("~/logs/server.log"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Close()
//
//	if err := proc.Start(ctx); err != nil {
//	    log.Fatal(err) // errors.Is(err, readyproc.ErrPrematureExit)
//	}
//	// Run tests against the server...
//	if err := proc.Stop(ctx); err != nil {
//	    log.Print(err)
//	}
//
// # Transcript
//
// With WithSaveLogTo every stdout and stderr line is written to the file,
// tagged with its stream, after a header naming the command. The final
// line records how the process ended:
//
//	===== readyproc process log (2026-10-19T10:00:00Z) =====
//	Command: npm start
//
//	STDOUT: Listening on port 3000
//	STDERR: deprecation warning
//	EXIT CODE: SIGTERM
//
// # Process Trees
//
// On unix the shell is made leader of a new process group, and Stop
// signals the whole group: SIGTERM first, SIGKILL once the stop timeout
// (WithStopTimeout) has passed. On Windows Stop runs taskkill /T /F.
package readyproc
