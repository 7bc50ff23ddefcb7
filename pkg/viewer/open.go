package viewer

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/fetch"
	"github.com/Sriram-PR/doc-navigator/pkg/library"
	"github.com/Sriram-PR/doc-navigator/pkg/loader"
	"github.com/Sriram-PR/doc-navigator/pkg/render"
	"github.com/Sriram-PR/doc-navigator/pkg/storage"
	"github.com/Sriram-PR/doc-navigator/pkg/tokens"
)

// gcInterval is how often the on-disk store reclaims value log space.
const gcInterval = 10 * time.Minute

// OpenOptions tweaks how Open builds its collaborators.
type OpenOptions struct {
	InMemory   bool         // Keep uploads only for the life of the process
	HTTPClient *http.Client // Overrides the client built from http_client_settings
}

// Session is a Viewer together with the storage it owns.
type Session struct {
	*Viewer
	store storage.KVStore
}

// Open builds a Viewer from configuration: the badger store under state_dir,
// the uploads library, the polite remote fetcher, the loader, the renderer and
// the token counter. Call Init before use and Close when done.
func Open(cfg *config.AppConfig, opts OpenOptions, log *logrus.Entry) (*Session, error) {
	var (
		store *storage.BadgerStore
		err   error
	)
	if opts.InMemory {
		store, err = storage.NewInMemoryBadgerStore(log.WithField("component", "storage"))
	} else {
		store, err = storage.NewBadgerStore(cfg.StateDir, log.WithField("component", "storage"))
	}
	if err != nil {
		return nil, err
	}

	lib := library.New(library.Options{
		KV:         store,
		StorageKey: cfg.StorageKey,
		Logger:     log,
	})

	fetchLog := log.WithField("component", "fetch")
	var remote *fetch.Remote
	if opts.HTTPClient != nil {
		remote = fetch.NewRemoteWithClient(opts.HTTPClient, cfg, fetchLog)
	} else {
		remote = fetch.NewRemote(cfg, fetchLog)
	}

	counter, err := tokens.NewCounter(cfg.TokenEncoding)
	if err != nil {
		log.Warnf("Token estimates disabled: %v", err)
		counter = nil
	}

	v := New(Options{
		Config:   cfg,
		Library:  lib,
		Loader:   loader.New(cfg, remote, log),
		Renderer: render.New(render.Options{AllowRawHTML: cfg.AllowRawHTML}),
		Counter:  counter,
		Logger:   log,
	})
	return &Session{Viewer: v, store: store}, nil
}

// RunMaintenance runs storage garbage collection until ctx is done.
func (s *Session) RunMaintenance(ctx context.Context) {
	if admin, ok := s.store.(storage.StoreAdmin); ok {
		admin.RunGC(ctx, gcInterval)
	}
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}
