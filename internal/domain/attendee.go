package domain

import "time"

// Registration status state machine: PENDING -> CONFIRMED | CANCELLED | WAITLISTED.
const (
	RegistrationPending    = "PENDING"
	RegistrationConfirmed  = "CONFIRMED"
	RegistrationCancelled  = "CANCELLED"
	RegistrationWaitlisted = "WAITLISTED"
)

// Payment status state machine: PENDING -> PROCESSING -> COMPLETED | FAILED | REFUNDED.
// COMPLETED auto-confirms the registration.
const (
	PaymentPending    = "PENDING"
	PaymentProcessing = "PROCESSING"
	PaymentCompleted  = "COMPLETED"
	PaymentFailed     = "FAILED"
	PaymentRefunded   = "REFUNDED"
)

const (
	AttendanceInPerson = "IN_PERSON"
	AttendanceVirtual  = "VIRTUAL"
)

// Attendee is the event-registration profile, one per user.
type Attendee struct {
	AttendeeID string `json:"id" dynamodbav:"attendee_id"`
	UserID     string `json:"user_id" dynamodbav:"user_id"`

	// Personal information
	FullName       string    `json:"full_name" dynamodbav:"full_name"`
	DateOfBirth    time.Time `json:"date_of_birth" dynamodbav:"date_of_birth"`
	Gender         string    `json:"gender" dynamodbav:"gender"`
	Nationality    string    `json:"nationality" dynamodbav:"nationality"`
	DocumentNumber *string   `json:"document_number,omitempty" dynamodbav:"document_number"`

	// Contact information
	MobileNumber       string  `json:"mobile_number" dynamodbav:"mobile_number"`
	AlternateContact   *string `json:"alternate_contact_number,omitempty" dynamodbav:"alternate_contact_number"`
	ResidentialAddress string  `json:"residential_address" dynamodbav:"residential_address"`
	PinCode            string  `json:"pin_code" dynamodbav:"pin_code"`

	// Professional details
	Organization string  `json:"organization" dynamodbav:"organization"`
	Designation  string  `json:"designation" dynamodbav:"designation"`
	Industry     string  `json:"industry" dynamodbav:"industry"`
	LinkedinURL  *string `json:"linkedin_url,omitempty" dynamodbav:"linkedin_url"`

	// Event-specific details
	AttendanceType        string   `json:"attendance_type" dynamodbav:"attendance_type"`
	DaysAttending         []string `json:"days_attending" dynamodbav:"days_attending"`
	SessionsInterested    []string `json:"sessions_interested" dynamodbav:"sessions_interested"`
	AccommodationRequired bool     `json:"accommodation_required" dynamodbav:"accommodation_required"`
	MealPreference        string   `json:"meal_preference" dynamodbav:"meal_preference"`
	TshirtSize            string   `json:"tshirt_size" dynamodbav:"tshirt_size"`

	// Uploaded files
	PhotoURL     *string `json:"photo_url,omitempty" dynamodbav:"photo_url"`
	IDProofURL   *string `json:"id_proof_url,omitempty" dynamodbav:"id_proof_url"`
	StudentIDURL *string `json:"student_id_url,omitempty" dynamodbav:"student_id_url"`

	// Emergency details
	EmergencyContactName   string `json:"emergency_contact_name" dynamodbav:"emergency_contact_name"`
	EmergencyContactNumber string `json:"emergency_contact_number" dynamodbav:"emergency_contact_number"`
	EmergencyRelationship  string `json:"emergency_relationship" dynamodbav:"emergency_relationship"`

	// Consent
	TermsAccepted        bool `json:"terms_accepted" dynamodbav:"terms_accepted"`
	PhotoVideoConsent    bool `json:"photo_video_consent" dynamodbav:"photo_video_consent"`
	DataPrivacyAgreement bool `json:"data_privacy_agreement" dynamodbav:"data_privacy_agreement"`

	// Optional analytics
	HeardAboutEvent   *string  `json:"heard_about_event,omitempty" dynamodbav:"heard_about_event"`
	VolunteerInterest bool     `json:"volunteer_interest" dynamodbav:"volunteer_interest"`
	AreasOfInterest   []string `json:"areas_of_interest" dynamodbav:"areas_of_interest"`

	// Status
	RegistrationStatus string     `json:"registration_status" dynamodbav:"registration_status"`
	PaymentStatus      string     `json:"payment_status" dynamodbav:"payment_status"`
	PaymentID          *string    `json:"payment_id,omitempty" dynamodbav:"payment_id"`
	PaymentAmount      *float64   `json:"payment_amount,omitempty" dynamodbav:"payment_amount"`
	PaymentDate        *time.Time `json:"payment_date,omitempty" dynamodbav:"payment_date"`

	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`

	User *User `json:"user,omitempty" dynamodbav:"-"`
}

type CreateAttendeeRequest struct {
	FullName       string  `json:"full_name" validate:"required,min=2,max=100"`
	DateOfBirth    string  `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
	Gender         string  `json:"gender" validate:"required,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	Nationality    string  `json:"nationality" validate:"required,min=2,max=50"`
	DocumentNumber *string `json:"document_number"`

	MobileNumber       string  `json:"mobile_number" validate:"required,min=10,max=15"`
	AlternateContact   *string `json:"alternate_contact_number"`
	ResidentialAddress string  `json:"residential_address" validate:"required,min=10,max=500"`
	PinCode            string  `json:"pin_code" validate:"required,len=6,numeric"`

	Organization string  `json:"organization" validate:"required,min=2,max=100"`
	Designation  string  `json:"designation" validate:"required,min=2,max=100"`
	Industry     string  `json:"industry" validate:"required"`
	LinkedinURL  *string `json:"linkedin_url" validate:"omitempty,url"`

	AttendanceType        string   `json:"attendance_type" validate:"required,oneof=IN_PERSON VIRTUAL"`
	DaysAttending         []string `json:"days_attending" validate:"required,min=1"`
	SessionsInterested    []string `json:"sessions_interested" validate:"required,min=1"`
	AccommodationRequired bool     `json:"accommodation_required"`
	MealPreference        string   `json:"meal_preference" validate:"required,oneof=VEG NON_VEG VEGAN JAIN OTHER"`
	TshirtSize            string   `json:"tshirt_size" validate:"required,oneof=XS S M L XL XXL"`

	EmergencyContactName   string `json:"emergency_contact_name" validate:"required,min=2,max=100"`
	EmergencyContactNumber string `json:"emergency_contact_number" validate:"required,min=10,max=15"`
	EmergencyRelationship  string `json:"emergency_relationship" validate:"required,min=2,max=50"`

	TermsAccepted        bool `json:"terms_accepted" validate:"eq=true"`
	PhotoVideoConsent    bool `json:"photo_video_consent"`
	DataPrivacyAgreement bool `json:"data_privacy_agreement" validate:"eq=true"`

	HeardAboutEvent   *string  `json:"heard_about_event"`
	VolunteerInterest bool     `json:"volunteer_interest"`
	AreasOfInterest   []string `json:"areas_of_interest"`
}

type UpdateAttendeeRequest struct {
	FullName       *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	DateOfBirth    *string `json:"date_of_birth"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	Nationality    *string `json:"nationality" validate:"omitempty,min=2,max=50"`
	DocumentNumber *string `json:"document_number"`

	MobileNumber       *string `json:"mobile_number" validate:"omitempty,min=10,max=15"`
	AlternateContact   *string `json:"alternate_contact_number"`
	ResidentialAddress *string `json:"residential_address" validate:"omitempty,min=10,max=500"`
	PinCode            *string `json:"pin_code" validate:"omitempty,len=6,numeric"`

	Organization *string `json:"organization" validate:"omitempty,min=2,max=100"`
	Designation  *string `json:"designation" validate:"omitempty,min=2,max=100"`
	Industry     *string `json:"industry"`
	LinkedinURL  *string `json:"linkedin_url" validate:"omitempty,url"`

	AttendanceType        *string  `json:"attendance_type" validate:"omitempty,oneof=IN_PERSON VIRTUAL"`
	DaysAttending         []string `json:"days_attending"`
	SessionsInterested    []string `json:"sessions_interested"`
	AccommodationRequired *bool    `json:"accommodation_required"`
	MealPreference        *string  `json:"meal_preference" validate:"omitempty,oneof=VEG NON_VEG VEGAN JAIN OTHER"`
	TshirtSize            *string  `json:"tshirt_size" validate:"omitempty,oneof=XS S M L XL XXL"`

	EmergencyContactName   *string `json:"emergency_contact_name" validate:"omitempty,min=2,max=100"`
	EmergencyContactNumber *string `json:"emergency_contact_number" validate:"omitempty,min=10,max=15"`
	EmergencyRelationship  *string `json:"emergency_relationship" validate:"omitempty,min=2,max=50"`

	HeardAboutEvent   *string  `json:"heard_about_event"`
	VolunteerInterest *bool    `json:"volunteer_interest"`
	AreasOfInterest   []string `json:"areas_of_interest"`
}

// ListAttendeesQuery combines AND-semantics filters with an OR-semantics
// case-insensitive text search across name and contact fields.
type ListAttendeesQuery struct {
	Page               int
	Limit              int
	Industry           string
	AttendanceType     string
	RegistrationStatus string
	FromDate           *time.Time
	ToDate             *time.Time
	Search             string
}

type UpdatePaymentRequest struct {
	PaymentStatus string   `json:"payment_status" validate:"required,oneof=PENDING PROCESSING COMPLETED FAILED REFUNDED"`
	PaymentID     *string  `json:"payment_id"`
	PaymentAmount *float64 `json:"payment_amount"`
}

// AttendeeStats holds the admin dashboard aggregates. The counts are computed
// concurrently and are point-in-time, not snapshot-consistent with each other.
type AttendeeStats struct {
	Total                 int `json:"total"`
	Confirmed             int `json:"confirmed"`
	Pending               int `json:"pending"`
	Cancelled             int `json:"cancelled"`
	InPerson              int `json:"in_person"`
	Virtual               int `json:"virtual"`
	AccommodationRequired int `json:"accommodation_required"`
}
