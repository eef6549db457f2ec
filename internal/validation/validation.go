// Package validation is the field-validation collaborator at the boundary of
// the record store. The store itself never interprets field contents; it
// surfaces failures from here unchanged as domain.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourorg/adminstate/internal/domain"
)

// Validator checks request structs against their declared constraints.
type Validator struct {
	validate *validator.Validate
}

// New builds the validator.
func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// CreateContact validates a contact creation request, including the source
// enum when set.
func (v *Validator) CreateContact(req domain.CreateContactRequest) error {
	if req.Source != "" && !req.Source.Valid() {
		return fmt.Errorf("%w: unknown contact source %q", domain.ErrValidation, req.Source)
	}
	return v.check(req)
}

// UpdateContact validates a contact update request.
func (v *Validator) UpdateContact(req domain.UpdateContactRequest) error {
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: unknown contact status %q", domain.ErrValidation, *req.Status)
	}
	return v.check(req)
}

// CreateDeal validates a deal creation request.
func (v *Validator) CreateDeal(req domain.CreateDealRequest) error {
	return v.check(req)
}

// UpdateDeal validates a deal update request, including the stage enum.
func (v *Validator) UpdateDeal(req domain.UpdateDealRequest) error {
	if req.Stage != nil && !req.Stage.Valid() {
		return fmt.Errorf("%w: unknown deal stage %q", domain.ErrValidation, *req.Stage)
	}
	return v.check(req)
}

// DealStage validates a bare stage value for the stage fast-path.
func (v *Validator) DealStage(stage domain.DealStage) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: unknown deal stage %q", domain.ErrValidation, stage)
	}
	return nil
}

// CreateTransaction validates a ledger entry request, including both enums.
func (v *Validator) CreateTransaction(req domain.CreateTransactionRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, req.Type)
	}
	if !req.Category.Valid() {
		return fmt.Errorf("%w: unknown transaction category %q", domain.ErrValidation, req.Category)
	}
	return v.check(req)
}

// SetFeatureFlag validates a flag upsert request.
func (v *Validator) SetFeatureFlag(req domain.SetFeatureFlagRequest) error {
	return v.check(req)
}

// check runs struct-tag validation and folds the first failure into the
// domain taxonomy with a readable field message.
func (v *Validator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return fmt.Errorf("%w: field %s fails %q", domain.ErrValidation, fieldName(f), f.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

func fieldName(f validator.FieldError) string {
	// Strip the struct name prefix from the namespace for terser messages.
	ns := f.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return f.Field()
}
