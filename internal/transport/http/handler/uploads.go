package handler

import (
	"encoding/json"
	"net/http"

	"github.com/event-registration-api/internal/application/upload"
	"github.com/event-registration-api/internal/pkg/validate"
	"github.com/event-registration-api/internal/transport/http/middleware"
)

// UploadHandler issues presigned S3 URLs.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

func (h *UploadHandler) Presign(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		FileName    string `json:"file_name" validate:"required,min=1,max=255"`
		ContentType string `json:"content_type" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	presigned, err := h.svc.PresignUpload(r.Context(), claims.UserID, req.FileName, req.ContentType)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presigned)
}

func (h *UploadHandler) PresignDownload(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key required")
		return
	}
	url, err := h.svc.PresignDownload(r.Context(), key)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}
