package domain

// FeatureFlag gates a feature by key. When AllowList is non-empty it alone
// decides access and Percentage is ignored; otherwise Percentage (if set)
// buckets identities deterministically; otherwise Enabled applies to everyone.
type FeatureFlag struct {
	Key         string     `json:"key"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description,omitempty"`
	Percentage  *uint8     `json:"percentage,omitempty"`
	AllowList   []Identity `json:"allow_list,omitempty"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// SetFeatureFlagRequest is a full upsert: the stored flag for Key is replaced
// wholesale, there is no partial flag update.
type SetFeatureFlagRequest struct {
	Key         string     `json:"key" validate:"required,max=200"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=1000"`
	Percentage  *uint8     `json:"percentage,omitempty" validate:"omitempty,max=100"`
	AllowList   []Identity `json:"allow_list,omitempty"`
}
