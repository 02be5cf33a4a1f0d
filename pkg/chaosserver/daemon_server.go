package chaosserver

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// shutdownGrace is how long processes get to return after their context is canceled.
const shutdownGrace = 10 * time.Second

type DaemonProcess interface {
	Run(ctx context.Context)
}

func NewDaemonServer(processes []DaemonProcess) *DaemonServer {
	return &DaemonServer{processes: processes}
}

type DaemonServer struct {
	processes []DaemonProcess
}

// Serve runs every process until SIGINT or SIGTERM is received.
func (da *DaemonServer) Serve() {
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChannel)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s := <-sigChannel
		log.Infof("Received shutdown signal: %v", s)
		cancel()
	}()

	da.Run(ctx)
}

// Run starts the processes and blocks until ctx is done and they have returned, or the
// shutdown grace period passes.
func (da *DaemonServer) Run(ctx context.Context) {
	if len(da.processes) < 1 {
		log.Error("Empty process list, exiting")
		return
	}

	log.Info("Started serving")

	wg := sync.WaitGroup{}
	for _, process := range da.processes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			process.Run(ctx)
		}()
	}

	<-ctx.Done()

	wchan := make(chan struct{})
	go func() {
		defer close(wchan)
		wg.Wait()
	}()

	select {
	case <-wchan:
		log.Info("All processes stopped")
	case <-time.After(shutdownGrace):
		log.Warn("Timed out waiting for processes to stop")
	}

	log.Info("Ended serving")
}
