package run

import (
	"os"
	"os/signal"
	"syscall"
)

// ShieldTTYSignals makes the host survive Ctrl-C, Ctrl-\ and Ctrl-Z at the
// prompt: the signals are delivered to a channel and discarded instead of
// killing or stopping the process. Children spawned by the Launcher keep
// the default dispositions, so the user can still interrupt a foreground
// command. Returns a restore function.
func ShieldTTYSignals() func() {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				// Swallowed; readline redraws the prompt on its own.
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
