package domain

// DealID identifies a Deal.
type DealID uint64

// DealStage is a deal's position in the pipeline.
type DealStage string

const (
	DealStageLead        DealStage = "lead"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageClosedWon   DealStage = "closed_won"
	DealStageClosedLost  DealStage = "closed_lost"
)

// Valid reports whether s is one of the known stages.
func (s DealStage) Valid() bool {
	switch s {
	case DealStageLead, DealStageQualified, DealStageProposal,
		DealStageNegotiation, DealStageClosedWon, DealStageClosedLost:
		return true
	}
	return false
}

// Deal is a sales opportunity tied to a contact. Value is in minor currency
// units. Owner and Creator are both the creating identity at creation time;
// only ownership participates in row-level security.
type Deal struct {
	ID                DealID    `json:"id"`
	ContactID         ContactID `json:"contact_id"`
	Name              string    `json:"name"`
	Value             *uint64   `json:"value,omitempty"`
	Stage             DealStage `json:"stage"`
	Notes             string    `json:"notes,omitempty"`
	ExpectedCloseDate Timestamp `json:"expected_close_date,omitempty"`
	Owner             Identity  `json:"owner,omitempty"`
	Creator           Identity  `json:"creator,omitempty"`
	CreatedAt         Timestamp `json:"created_at"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// CreateDealRequest carries the fields for a new deal. The contact must exist
// at creation time; new deals always start in the Lead stage.
type CreateDealRequest struct {
	ContactID         ContactID `json:"contact_id" validate:"required"`
	Name              string    `json:"name" validate:"required,min=3,max=200"`
	Value             *uint64   `json:"value,omitempty" validate:"omitempty,max=1000000000"`
	Notes             string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	ExpectedCloseDate Timestamp `json:"expected_close_date,omitempty"`
}

// UpdateDealRequest is a partial update: nil fields are left untouched.
type UpdateDealRequest struct {
	ID                DealID     `json:"id" validate:"required"`
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Value             *uint64    `json:"value,omitempty" validate:"omitempty,max=1000000000"`
	Stage             *DealStage `json:"stage,omitempty"`
	Notes             *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	ExpectedCloseDate *Timestamp `json:"expected_close_date,omitempty"`
}

// DealFilter is a conjunction of optional predicates.
type DealFilter struct {
	Stage     *DealStage
	ContactID *ContactID
}
