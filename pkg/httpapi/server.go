package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

// maxUploadBytes caps a multipart upload request.
const maxUploadBytes = 32 << 20

// Server is the HTTP front end of the navigator.
type Server struct {
	router chi.Router
	viewer *viewer.Viewer
	log    *logrus.Entry
}

// NewServer creates and configures the HTTP server.
func NewServer(v *viewer.Viewer, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		viewer: v,
		log:    log.WithField("component", "http"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleWelcomePage)
	r.Get("/quick/{id}", s.handleQuickLink)
	r.Get("/docs/{id}", s.handleDocumentPage)
	r.Get("/docs/{id}/{section}", s.handleDocumentPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/navigation", s.handleNavigation)
		r.Get("/view", s.handleView)
		r.Delete("/view", s.handleClearView)

		r.Post("/uploads", s.handleUpload)
		r.Delete("/removals/{token}", s.handleConfirmRemoval)

		r.Route("/documents/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/", s.handleReplaceContent)
			r.Get("/outline", s.handleOutline)
			r.Get("/export", s.handleExport)
			r.Get("/sections/{section}", s.handleSection)
			r.Post("/removal", s.handleRequestRemoval)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": len(s.viewer.Documents()),
	})
}
