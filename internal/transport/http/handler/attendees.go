package handler

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/event-registration-api/internal/application/attendee"
	"github.com/event-registration-api/internal/domain"
	"github.com/event-registration-api/internal/pkg/validate"
	"github.com/event-registration-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 32 << 20

// AttendeeHandler handles registration-profile endpoints.
type AttendeeHandler struct {
	svc attendee.Service
}

func NewAttendeeHandler(svc attendee.Service) *AttendeeHandler { return &AttendeeHandler{svc: svc} }

// Create registers the caller's profile. The request is either plain JSON
// (files attached later via presigned uploads) or a multipart form with a
// "data" JSON part plus optional photo, id_proof, and student_id files.
func (h *AttendeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.CreateAttendeeRequest
	files, err := decodeAttendeeBody(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer files.close()
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Create(r.Context(), claims.UserID, req, files.toFiles())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AttendeeHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.GetMine(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AttendeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AttendeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.UpdateAttendeeRequest
	files, err := decodeAttendeeBody(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer files.close()
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), claims.UserID, req, files.toFiles())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AttendeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "attendee deleted"})
}

func (h *AttendeeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := domain.ListAttendeesQuery{
		Industry:           r.URL.Query().Get("industry"),
		AttendanceType:     r.URL.Query().Get("attendance_type"),
		RegistrationStatus: r.URL.Query().Get("registration_status"),
		Search:             r.URL.Query().Get("search"),
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if v := r.URL.Query().Get("from_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from_date")
			return
		}
		q.FromDate = &t
	}
	if v := r.URL.Query().Get("to_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to_date")
			return
		}
		// inclusive end of day
		t = t.Add(24*time.Hour - time.Nanosecond)
		q.ToDate = &t
	}

	result, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AttendeeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AttendeeHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.svc.UpdatePayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// formFiles tracks opened multipart files so they can be closed after the
// service has consumed them.
type formFiles struct {
	photo     *openedFile
	idProof   *openedFile
	studentID *openedFile
}

type openedFile struct {
	file   multipart.File
	header *multipart.FileHeader
}

func (f *formFiles) toFiles() attendee.Files {
	out := attendee.Files{}
	if f.photo != nil {
		out.Photo = f.photo.upload()
	}
	if f.idProof != nil {
		out.IDProof = f.idProof.upload()
	}
	if f.studentID != nil {
		out.StudentID = f.studentID.upload()
	}
	return out
}

func (o *openedFile) upload() *attendee.FileUpload {
	return &attendee.FileUpload{
		Reader:      o.file,
		FileName:    o.header.Filename,
		ContentType: o.header.Header.Get("Content-Type"),
	}
}

func (f *formFiles) close() {
	for _, o := range []*openedFile{f.photo, f.idProof, f.studentID} {
		if o != nil {
			o.file.Close()
		}
	}
}

// decodeAttendeeBody decodes either a JSON body or a multipart form into dst.
// The multipart shape carries the JSON payload in the "data" field and the
// files under photo, id_proof, and student_id.
func decodeAttendeeBody(r *http.Request, dst interface{}) (*formFiles, error) {
	files := &formFiles{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return files, domain.ErrBadRequest
		}
		return files, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return files, domain.ErrBadRequest
	}
	data := r.FormValue("data")
	if data == "" {
		return files, domain.ErrBadRequest
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return files, domain.ErrBadRequest
	}

	open := func(field string, dst **openedFile) error {
		f, header, err := r.FormFile(field)
		if err == http.ErrMissingFile {
			return nil
		}
		if err != nil {
			return domain.ErrBadRequest
		}
		*dst = &openedFile{file: f, header: header}
		return nil
	}
	if err := open("photo", &files.photo); err != nil {
		return files, err
	}
	if err := open("id_proof", &files.idProof); err != nil {
		return files, err
	}
	if err := open("student_id", &files.studentID); err != nil {
		return files, err
	}
	return files, nil
}
