package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// catchCtrlC cancels the context on SIGINT or SIGTERM.
func catchCtrlC(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals,
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	go func() {
		<-signals
		signal.Stop(signals)
		cancel()
	}()
}
