package domain

// ContactID identifies a Contact. IDs are assigned monotonically starting at
// 1; id 0 is never issued.
type ContactID uint64

// ContactSource records how a contact was acquired.
type ContactSource string

const (
	ContactSourceSignup    ContactSource = "signup"
	ContactSourceReferral  ContactSource = "referral"
	ContactSourceMarketing ContactSource = "marketing"
	ContactSourceEvent     ContactSource = "event"
	ContactSourcePartner   ContactSource = "partner"
	ContactSourceOther     ContactSource = "other"
)

// Valid reports whether s is one of the known sources.
func (s ContactSource) Valid() bool {
	switch s {
	case ContactSourceSignup, ContactSourceReferral, ContactSourceMarketing,
		ContactSourceEvent, ContactSourcePartner, ContactSourceOther:
		return true
	}
	return false
}

// ContactStatus is the lifecycle state of a contact.
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
	ContactStatusChurned  ContactStatus = "churned"
)

// Valid reports whether s is one of the known statuses.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusActive, ContactStatusInactive, ContactStatusChurned:
		return true
	}
	return false
}

// Contact is a CRM contact record. Email is unique case-insensitively; the
// owner is the creating identity and never changes afterwards. TeamID is
// reserved and not interpreted anywhere yet.
type Contact struct {
	ID           ContactID     `json:"id"`
	UserID       string        `json:"user_id,omitempty"`
	Email        string        `json:"email"`
	Name         string        `json:"name,omitempty"`
	Company      string        `json:"company,omitempty"`
	JobTitle     string        `json:"job_title,omitempty"`
	InterestArea string        `json:"interest_area,omitempty"`
	Source       ContactSource `json:"source"`
	Notes        string        `json:"notes,omitempty"`
	Status       ContactStatus `json:"status"`
	Owner        Identity      `json:"owner,omitempty"`
	TeamID       string        `json:"team_id,omitempty"`
	CreatedAt    Timestamp     `json:"created_at"`
	UpdatedAt    Timestamp     `json:"updated_at"`
}

// CreateContactRequest carries the fields for a new contact.
type CreateContactRequest struct {
	UserID       string        `json:"user_id,omitempty"`
	Email        string        `json:"email" validate:"required,email,max=254"`
	Name         string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Company      string        `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle     string        `json:"job_title,omitempty" validate:"omitempty,max=100"`
	InterestArea string        `json:"interest_area,omitempty" validate:"omitempty,max=200"`
	Source       ContactSource `json:"source,omitempty"`
	Notes        string        `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// UpdateContactRequest is a partial update: nil fields are left untouched.
// Email and owner are immutable and deliberately absent.
type UpdateContactRequest struct {
	ID           ContactID      `json:"id" validate:"required"`
	Name         *string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Company      *string        `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle     *string        `json:"job_title,omitempty" validate:"omitempty,max=100"`
	InterestArea *string        `json:"interest_area,omitempty" validate:"omitempty,max=200"`
	Notes        *string        `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Status       *ContactStatus `json:"status,omitempty"`
}

// ContactFilter is a conjunction of optional predicates; unset fields impose
// no constraint. Search matches email, name, or company case-insensitively.
type ContactFilter struct {
	Status *ContactStatus
	Source *ContactSource
	Search string
}
