package server

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifySignals relays SIGINT and SIGTERM. The channel has room for two
// signals so a second one during draining is not lost. Call stop to
// unsubscribe.
func NotifySignals() (signals <-chan os.Signal, stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
