package attendee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/event-registration-api/internal/domain"
	"github.com/event-registration-api/internal/pkg/id"
)

// FileUpload carries one incoming file from a multipart form.
type FileUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
}

// Files groups the optional uploads accepted on create and update.
type Files struct {
	Photo     *FileUpload
	IDProof   *FileUpload
	StudentID *FileUpload
}

// ListResult is one page of the admin listing.
type ListResult struct {
	Attendees  []domain.Attendee `json:"attendees"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateAttendeeRequest, files Files) (*domain.Attendee, error)
	GetMine(ctx context.Context, userID string) (*domain.Attendee, error)
	GetByID(ctx context.Context, attendeeID string) (*domain.Attendee, error)
	Update(ctx context.Context, userID string, req domain.UpdateAttendeeRequest, files Files) (*domain.Attendee, error)
	Delete(ctx context.Context, attendeeID string) error
	List(ctx context.Context, q domain.ListAttendeesQuery) (*ListResult, error)
	Statistics(ctx context.Context) (*domain.AttendeeStats, error)
	UpdatePayment(ctx context.Context, attendeeID string, req domain.UpdatePaymentRequest) (*domain.Attendee, error)
}

type attendeeStore interface {
	Put(ctx context.Context, a *domain.Attendee) error
	Get(ctx context.Context, attendeeID string) (*domain.Attendee, error)
	GetByUser(ctx context.Context, userID string) (*domain.Attendee, error)
	Update(ctx context.Context, attendeeID string, updates map[string]interface{}) error
	Delete(ctx context.Context, attendeeID string) error
	ScanAll(ctx context.Context) ([]domain.Attendee, error)
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	CountByAttendanceType(ctx context.Context, t string) (int, error)
	CountAccommodation(ctx context.Context) (int, error)
}

type fileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	DeleteByURL(ctx context.Context, fileURL string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type service struct {
	attendeeRepo attendeeStore
	userRepo     userStore
	files        fileStore
}

type ServiceDeps struct {
	AttendeeRepo attendeeStore
	UserRepo     userStore
	Files        fileStore
}

func NewService(deps ServiceDeps) Service {
	return &service{attendeeRepo: deps.AttendeeRepo, userRepo: deps.UserRepo, files: deps.Files}
}

// Create registers the attendee profile for a user. A user gets exactly one
// profile; a second create is a Conflict. Files are uploaded first so the row
// is written with its final URLs; if the write fails, the uploads are removed
// best-effort in the background.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateAttendeeRequest, files Files) (*domain.Attendee, error) {
	if _, err := s.attendeeRepo.GetByUser(ctx, userID); err == nil {
		return nil, fmt.Errorf("attendee already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid date_of_birth: %w", domain.ErrBadRequest)
	}

	uploaded, err := s.uploadFiles(ctx, files)
	if err != nil {
		s.deleteFilesAsync(uploaded)
		return nil, err
	}

	now := time.Now().UTC()
	a := &domain.Attendee{
		AttendeeID: id.New(),
		UserID:     userID,

		FullName:       req.FullName,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		Nationality:    req.Nationality,
		DocumentNumber: req.DocumentNumber,

		MobileNumber:       req.MobileNumber,
		AlternateContact:   req.AlternateContact,
		ResidentialAddress: req.ResidentialAddress,
		PinCode:            req.PinCode,

		Organization: req.Organization,
		Designation:  req.Designation,
		Industry:     req.Industry,
		LinkedinURL:  req.LinkedinURL,

		AttendanceType:        req.AttendanceType,
		DaysAttending:         req.DaysAttending,
		SessionsInterested:    req.SessionsInterested,
		AccommodationRequired: req.AccommodationRequired,
		MealPreference:        req.MealPreference,
		TshirtSize:            req.TshirtSize,

		PhotoURL:     uploaded.Photo,
		IDProofURL:   uploaded.IDProof,
		StudentIDURL: uploaded.StudentID,

		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactNumber: req.EmergencyContactNumber,
		EmergencyRelationship:  req.EmergencyRelationship,

		TermsAccepted:        req.TermsAccepted,
		PhotoVideoConsent:    req.PhotoVideoConsent,
		DataPrivacyAgreement: req.DataPrivacyAgreement,

		HeardAboutEvent:   req.HeardAboutEvent,
		VolunteerInterest: req.VolunteerInterest,
		AreasOfInterest:   req.AreasOfInterest,

		RegistrationStatus: domain.RegistrationPending,
		PaymentStatus:      domain.PaymentPending,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.attendeeRepo.Put(ctx, a); err != nil {
		s.deleteFilesAsync(uploaded)
		return nil, err
	}
	return a, nil
}

func (s *service) GetMine(ctx context.Context, userID string) (*domain.Attendee, error) {
	a, err := s.attendeeRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.attachUser(ctx, a)
	return a, nil
}

func (s *service) GetByID(ctx context.Context, attendeeID string) (*domain.Attendee, error) {
	a, err := s.attendeeRepo.Get(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	s.attachUser(ctx, a)
	return a, nil
}

// Update applies partial changes to the caller's own profile. Replaced files
// are uploaded before the row is written and the superseded objects are
// deleted only after the write succeeds.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateAttendeeRequest, files Files) (*domain.Attendee, error) {
	current, err := s.attendeeRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setStr := func(field string, v *string) {
		if v != nil {
			updates[field] = *v
		}
	}
	setStr("full_name", req.FullName)
	setStr("gender", req.Gender)
	setStr("nationality", req.Nationality)
	setStr("document_number", req.DocumentNumber)
	setStr("mobile_number", req.MobileNumber)
	setStr("alternate_contact_number", req.AlternateContact)
	setStr("residential_address", req.ResidentialAddress)
	setStr("pin_code", req.PinCode)
	setStr("organization", req.Organization)
	setStr("designation", req.Designation)
	setStr("industry", req.Industry)
	setStr("linkedin_url", req.LinkedinURL)
	setStr("attendance_type", req.AttendanceType)
	setStr("meal_preference", req.MealPreference)
	setStr("tshirt_size", req.TshirtSize)
	setStr("emergency_contact_name", req.EmergencyContactName)
	setStr("emergency_contact_number", req.EmergencyContactNumber)
	setStr("emergency_relationship", req.EmergencyRelationship)
	setStr("heard_about_event", req.HeardAboutEvent)

	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth: %w", domain.ErrBadRequest)
		}
		updates["date_of_birth"] = dob.Format(time.RFC3339)
	}
	if req.DaysAttending != nil {
		updates["days_attending"] = req.DaysAttending
	}
	if req.SessionsInterested != nil {
		updates["sessions_interested"] = req.SessionsInterested
	}
	if req.AccommodationRequired != nil {
		updates["accommodation_required"] = *req.AccommodationRequired
	}
	if req.VolunteerInterest != nil {
		updates["volunteer_interest"] = *req.VolunteerInterest
	}
	if req.AreasOfInterest != nil {
		updates["areas_of_interest"] = req.AreasOfInterest
	}

	uploaded, err := s.uploadFiles(ctx, files)
	if err != nil {
		s.deleteFilesAsync(uploaded)
		return nil, err
	}
	var superseded Uploaded
	if uploaded.Photo != nil {
		updates["photo_url"] = *uploaded.Photo
		superseded.Photo = current.PhotoURL
	}
	if uploaded.IDProof != nil {
		updates["id_proof_url"] = *uploaded.IDProof
		superseded.IDProof = current.IDProofURL
	}
	if uploaded.StudentID != nil {
		updates["student_id_url"] = *uploaded.StudentID
		superseded.StudentID = current.StudentIDURL
	}

	if len(updates) > 0 {
		if err := s.attendeeRepo.Update(ctx, current.AttendeeID, updates); err != nil {
			s.deleteFilesAsync(uploaded)
			return nil, err
		}
	}
	s.deleteFilesAsync(superseded)

	return s.attendeeRepo.Get(ctx, current.AttendeeID)
}

// Delete removes a registration and then its uploaded files. The row delete is
// authoritative; file cleanup is best-effort.
func (s *service) Delete(ctx context.Context, attendeeID string) error {
	a, err := s.attendeeRepo.Get(ctx, attendeeID)
	if err != nil {
		return err
	}
	if err := s.attendeeRepo.Delete(ctx, attendeeID); err != nil {
		return err
	}
	s.deleteFilesAsync(Uploaded{Photo: a.PhotoURL, IDProof: a.IDProofURL, StudentID: a.StudentIDURL})
	return nil
}

// List is the admin listing: equality filters combine with AND, the free-text
// search matches name, mobile, or email case-insensitively, results sort
// newest first and paginate in memory.
func (s *service) List(ctx context.Context, q domain.ListAttendeesQuery) (*ListResult, error) {
	all, err := s.attendeeRepo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := all[:0:0]
	search := strings.ToLower(strings.TrimSpace(q.Search))

	// Attendees do not carry an email column; an @-shaped search term is
	// resolved to a user id through the users table instead.
	searchUserID := ""
	if strings.Contains(search, "@") {
		if u, err := s.userRepo.GetByEmail(ctx, search); err == nil {
			searchUserID = u.UserID
		}
	}

	for _, a := range all {
		if q.Industry != "" && a.Industry != q.Industry {
			continue
		}
		if q.AttendanceType != "" && a.AttendanceType != q.AttendanceType {
			continue
		}
		if q.RegistrationStatus != "" && a.RegistrationStatus != q.RegistrationStatus {
			continue
		}
		if q.FromDate != nil && a.CreatedAt.Before(*q.FromDate) {
			continue
		}
		if q.ToDate != nil && a.CreatedAt.After(*q.ToDate) {
			continue
		}
		if search != "" && !matchesSearch(&a, search, searchUserID) {
			continue
		}
		filtered = append(filtered, a)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}
	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ListResult{
		Attendees:  filtered[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Statistics computes the dashboard aggregates. The seven counts are
// independent scans, so they run concurrently; each goroutine writes its own
// field. The first error wins.
func (s *service) Statistics(ctx context.Context) (*domain.AttendeeStats, error) {
	var (
		stats domain.AttendeeStats
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)

	run := func(dst *int, fn func(context.Context) (int, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fn(ctx)
			if err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
				return
			}
			*dst = n
		}()
	}

	run(&stats.Total, s.attendeeRepo.CountAll)
	run(&stats.Confirmed, func(ctx context.Context) (int, error) {
		return s.attendeeRepo.CountByStatus(ctx, domain.RegistrationConfirmed)
	})
	run(&stats.Pending, func(ctx context.Context) (int, error) {
		return s.attendeeRepo.CountByStatus(ctx, domain.RegistrationPending)
	})
	run(&stats.Cancelled, func(ctx context.Context) (int, error) {
		return s.attendeeRepo.CountByStatus(ctx, domain.RegistrationCancelled)
	})
	run(&stats.InPerson, func(ctx context.Context) (int, error) {
		return s.attendeeRepo.CountByAttendanceType(ctx, domain.AttendanceInPerson)
	})
	run(&stats.Virtual, func(ctx context.Context) (int, error) {
		return s.attendeeRepo.CountByAttendanceType(ctx, domain.AttendanceVirtual)
	})
	run(&stats.AccommodationRequired, s.attendeeRepo.CountAccommodation)

	wg.Wait()
	if first != nil {
		return nil, first
	}
	return &stats, nil
}

// UpdatePayment records a payment status change. COMPLETED stamps the payment
// date and auto-confirms the registration.
func (s *service) UpdatePayment(ctx context.Context, attendeeID string, req domain.UpdatePaymentRequest) (*domain.Attendee, error) {
	if _, err := s.attendeeRepo.Get(ctx, attendeeID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"payment_status": req.PaymentStatus,
	}
	if req.PaymentID != nil {
		updates["payment_id"] = *req.PaymentID
	}
	if req.PaymentAmount != nil {
		updates["payment_amount"] = *req.PaymentAmount
	}
	if req.PaymentStatus == domain.PaymentCompleted {
		updates["payment_date"] = time.Now().UTC().Format(time.RFC3339)
		updates["registration_status"] = domain.RegistrationConfirmed
	}

	if err := s.attendeeRepo.Update(ctx, attendeeID, updates); err != nil {
		return nil, err
	}
	return s.attendeeRepo.Get(ctx, attendeeID)
}

// Uploaded holds the public URLs written during one create or update.
type Uploaded struct {
	Photo     *string
	IDProof   *string
	StudentID *string
}

func (u Uploaded) urls() []string {
	var out []string
	for _, p := range []*string{u.Photo, u.IDProof, u.StudentID} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// uploadFiles pushes each provided file under its prefix with a fresh name.
// On error the partial result is still returned so the caller can clean up.
func (s *service) uploadFiles(ctx context.Context, files Files) (Uploaded, error) {
	var out Uploaded
	upload := func(prefix string, f *FileUpload, dst **string) error {
		if f == nil {
			return nil
		}
		key := fmt.Sprintf("%s/%s%s", prefix, id.New(), strings.ToLower(filepath.Ext(f.FileName)))
		url, err := s.files.Upload(ctx, key, f.Reader, f.ContentType)
		if err != nil {
			return fmt.Errorf("upload %s: %w", prefix, err)
		}
		*dst = &url
		return nil
	}

	if err := upload("photos", files.Photo, &out.Photo); err != nil {
		return out, err
	}
	if err := upload("id-proofs", files.IDProof, &out.IDProof); err != nil {
		return out, err
	}
	if err := upload("student-ids", files.StudentID, &out.StudentID); err != nil {
		return out, err
	}
	return out, nil
}

// deleteFilesAsync removes uploaded objects without blocking the request.
// Failures are logged; an orphaned object is preferable to a failed request.
func (s *service) deleteFilesAsync(u Uploaded) {
	urls := u.urls()
	if len(urls) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, url := range urls {
			if err := s.files.DeleteByURL(ctx, url); err != nil {
				slog.Error("failed to delete uploaded file", "url", url, "err", err)
			}
		}
	}()
}

// attachUser loads the owning user onto the attendee for responses. A lookup
// failure leaves User nil rather than failing the read.
func (s *service) attachUser(ctx context.Context, a *domain.Attendee) {
	if u, err := s.userRepo.Get(ctx, a.UserID); err == nil {
		a.User = u
	}
}

func matchesSearch(a *domain.Attendee, search, searchUserID string) bool {
	if strings.Contains(strings.ToLower(a.FullName), search) {
		return true
	}
	if strings.Contains(strings.ToLower(a.MobileNumber), search) {
		return true
	}
	return searchUserID != "" && a.UserID == searchUserID
}
