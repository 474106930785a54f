package app

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/hawthornlabs/journey/internal/platform/errors"
	"github.com/hawthornlabs/journey/internal/platform/token"
	"github.com/hawthornlabs/journey/internal/services/progression/service"
)

// Handler serves the progression JSON API.
type Handler struct {
	service  *service.Service
	verifier *token.Verifier
}

// NewHandler creates an HTTP handler for the progression service. A nil
// verifier disables token checks and the path user id is trusted as-is.
func NewHandler(svc *service.Service, verifier *token.Verifier) *Handler {
	return &Handler{service: svc, verifier: verifier}
}

// RegisterRoutes mounts the progression API on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /v1/users/{user_id}/progress", h.handleGetProgress)
	mux.HandleFunc("POST /v1/users/{user_id}/chapters/{chapter}/completions", h.handleCompleteChapter)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r)
	if !ok {
		return
	}
	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progressToView(progress))
}

func (h *Handler) handleCompleteChapter(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r)
	if !ok {
		return
	}
	chapterNumber, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil {
		writeServiceError(w, apperrors.New(apperrors.CodeChapterUnknown, "chapter number must be an integer"))
		return
	}
	result, err := h.service.CompleteChapter(r.Context(), userID, chapterNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if result.XPGained == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, completionToView(result))
}

// authorizeUser resolves the acting user for a request. When a verifier is
// configured the bearer token must carry the same user id as the path.
func (h *Handler) authorizeUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeServiceError(w, apperrors.New(apperrors.CodeNotFound, "user id is required"))
		return "", false
	}
	if h.verifier == nil {
		return userID, true
	}
	claims, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		writeServiceError(w, err)
		return "", false
	}
	if claims.UserID != userID {
		writeServiceError(w, apperrors.New(apperrors.CodeTokenInvalid, "token user does not match path user"))
		return "", false
	}
	return userID, true
}

func bearerToken(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(value, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

// writeServiceError maps domain errors to JSON error responses. Errors
// without a domain code are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		log.Printf("progression request failed err=%v", err)
		writeJSON(w, http.StatusInternalServerError, errorView{Error: errorBody{
			Code:    string(apperrors.CodeUnknown),
			Message: "internal error",
		}})
		return
	}
	writeJSON(w, code.HTTPStatus(), errorView{Error: errorBody{
		Code:     string(code),
		Message:  err.Error(),
		Metadata: apperrors.GetMetadata(err),
	}})
}
