package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewer.Navigation(r.URL.Query().Get("q")))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.viewer.Current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleClearView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewer.ClearSelection())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.viewer.Document(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	out, err := s.viewer.Outline(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	sec, doc, err := s.viewer.Section(chi.URLParam(r, "id"), chi.URLParam(r, "section"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":   doc.ID,
		"document_name": doc.Name,
		"section_id":    sec.Heading.Slug,
		"title":         sec.Heading.Title,
		"content":       sec.Text,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filename, content, err := s.viewer.Export(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = io.WriteString(w, content)
}

func (s *Server) handleReplaceContent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := s.viewer.ReplaceContent(chi.URLParam(r, "id"), string(body))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRequestRemoval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token, err := s.viewer.RequestRemoval(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"document_id": id, "token": token})
}

func (s *Server) handleConfirmRemoval(w http.ResponseWriter, r *http.Request) {
	doc, err := s.viewer.ConfirmRemoval(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"removed": doc.ID,
		"name":    doc.Name,
		"state":   s.viewer.State().String(),
	})
}

// handleUpload accepts one or more "files" parts. A batch that adds nothing
// answers with the status of its first problem category.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "no files in form field 'files'", http.StatusBadRequest)
		return
	}

	contents, rejected, failures := readUploadParts(headers, readPart)

	report := s.viewer.UploadContents(contents)
	report.Rejected = append(report.Rejected, rejected...)
	report.Failures = append(report.Failures, failures...)

	code := http.StatusCreated
	if len(report.Added) == 0 {
		switch {
		case len(report.Rejected) > 0:
			code = http.StatusUnsupportedMediaType
		case len(report.Duplicates) > 0:
			code = http.StatusConflict
		case len(report.Failures) > 0:
			code = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, code, report)
}

// readUploadParts reads every part with a Markdown extension. Other parts are
// rejected without being opened.
func readUploadParts(headers []*multipart.FileHeader, read func(*multipart.FileHeader) ([]byte, error)) (contents []models.FileContent, rejected []string, failures []models.FileFailure) {
	for _, fh := range headers {
		if !utils.IsMarkdownFile(fh.Filename) {
			rejected = append(rejected, fh.Filename)
			continue
		}
		data, err := read(fh)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", utils.ErrReadFailure, fh.Filename, err)
			failures = append(failures, models.FileFailure{Name: fh.Filename, Category: utils.CategorizeError(err), Message: err.Error()})
			continue
		}
		contents = append(contents, models.FileContent{Name: fh.Filename, Content: string(data)})
	}
	return contents, rejected, failures
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
