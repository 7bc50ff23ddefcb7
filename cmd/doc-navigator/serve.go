package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/httpapi"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
	"github.com/Sriram-PR/doc-navigator/pkg/watch"
)

const shutdownTimeout = 10 * time.Second

func runServe(args []string) {
	fs := newFlagSet("serve", "serve [options]")
	opts := addCommonFlags(fs, "info")
	addr := fs.String("addr", "", "Listen address (default: listen_addr from config)")
	reload := fs.String("reload-interval", "", "Re-read built-in documents this often, e.g. 6h or 1d (default: reload_interval from config)")
	parseOrExit(fs, args)
	os.Exit(doServe(opts, *addr, *reload, os.Stdout, os.Stderr))
}

// doServe runs the HTTP navigator until SIGINT or SIGTERM.
func doServe(opts *commonOptions, addr, reloadInterval string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(opts.LogLevel, stderr)
	session, err := openSessionWithLogger(ctx, opts, logger, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	if addr == "" {
		addr = session.Config().ListenAddr
	}
	log := logger.WithField("component", "serve")

	go session.RunMaintenance(ctx)

	if reloadInterval == "" {
		reloadInterval = session.Config().ReloadInterval
	}
	if reloadInterval != "" {
		scheduler, err := newReloadScheduler(session.Viewer, reloadInterval, logger.WithField("component", "serve"))
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		go func() { _ = scheduler.Run(ctx) }()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(session.Viewer, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(stdout, "Serving on http://%s\n", displayAddr(addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		log.Warn("Received signal, shutting down...")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "Shutdown error: %v\n", err)
			return 1
		}
	}
	return 0
}

// newReloadScheduler builds a scheduler over every configured category.
func newReloadScheduler(v *viewer.Viewer, interval string, log *logrus.Entry) (*watch.Scheduler, error) {
	d, err := watch.ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, fmt.Errorf("reload interval must be positive, got %s", interval)
	}
	var ids []string
	for _, cat := range v.Config().Categories {
		ids = append(ids, cat.ID)
	}
	scheduler := watch.NewScheduler(v, ids, d, log)
	scheduler.MarkLoaded()
	return scheduler, nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
