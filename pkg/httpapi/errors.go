package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// statusFor maps an engine error category to an HTTP status.
func statusFor(err error) int {
	switch utils.CategorizeError(err) {
	case utils.CategoryNotFound:
		return http.StatusNotFound
	case utils.CategoryDuplicate:
		return http.StatusConflict
	case utils.CategoryInvalidInputType:
		return http.StatusUnsupportedMediaType
	case utils.CategoryReadFailure:
		return http.StatusUnprocessableEntity
	case "Removal_NotPending":
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError reports err with the status and category its taxonomy implies.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	category := utils.CategorizeError(err)
	if code == http.StatusInternalServerError {
		s.log.Errorf("Request failed (%s): %v", category, err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error(), "category": category})
}
