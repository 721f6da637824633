// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the counsellor service.
//
// This file contains the Lead entity and the onboarding request type.
// A Lead is a prospective student's profile captured once at onboarding;
// the session identifier minted alongside it is the capability token the
// chat endpoint requires.
package datatypes

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Lead Entity
// =============================================================================

// Lead is a prospective student's profile captured at onboarding.
//
// # Description
//
// A Lead is created exactly once when the onboarding form is submitted and is
// never mutated afterwards. Its SessionID binds a browser to this profile and
// to the conversation transcript; chat requests without a resolvable Lead are
// rejected.
//
// # Fields
//
//   - ID: Unique identifier ("lead_" prefix + UUID).
//   - SessionID: Opaque capability token ("session_" prefix + UUID).
//     A session identifier resolves to at most one Lead.
//   - Countries: Preferred study destinations. Never empty.
//   - FieldOfStudy / ProgramOfStudy: Academic intent.
//   - Budget: Numeric budget in USD.
//   - Name / Phone: Required contact details.
//   - Email / LookingFor: Optional.
//   - CreatedAt: Creation timestamp (UTC).
//
// # Limitations
//
//   - SessionID is an unauthenticated bearer token. Anyone holding it can
//     chat as this lead.
type Lead struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Countries      []string  `json:"countries"`
	FieldOfStudy   string    `json:"fieldOfStudy"`
	ProgramOfStudy string    `json:"programOfStudy"`
	Budget         float64   `json:"budget"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	LookingFor     string    `json:"lookingFor,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// =============================================================================
// Onboarding Request
// =============================================================================

// leadValidate is the validator instance for lead datatypes.
var leadValidate = validator.New()

// CreateLeadRequest is the onboarding form payload.
//
// # Validation
//
// Uses go-playground/validator:
//   - Countries: required, at least one entry
//   - FieldOfStudy, ProgramOfStudy: required
//   - Budget: required, > 0
//   - Name, Phone: required
//   - Email: optional, must be a valid address when present
type CreateLeadRequest struct {
	Countries      []string `json:"countries" validate:"required,min=1"`
	FieldOfStudy   string   `json:"fieldOfStudy" validate:"required"`
	ProgramOfStudy string   `json:"programOfStudy" validate:"required"`
	Budget         float64  `json:"budget" validate:"required,gt=0"`
	Name           string   `json:"name" validate:"required"`
	Phone          string   `json:"phone" validate:"required"`
	Email          string   `json:"email" validate:"omitempty,email"`
	LookingFor     string   `json:"lookingFor"`
}

// Validate validates the onboarding payload and returns a message suitable
// for direct display to the caller.
//
// # Outputs
//
//   - error: Non-nil with a field-specific message when validation fails.
func (r *CreateLeadRequest) Validate() error {
	err := leadValidate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	// Field-specific messages, matching the onboarding form's contract.
	switch fieldErrs[0].Field() {
	case "Countries":
		return errors.New("Countries are required")
	case "FieldOfStudy", "ProgramOfStudy":
		return errors.New("Field of study and program are required")
	case "Budget":
		return errors.New("Valid budget is required")
	case "Name", "Phone":
		return errors.New("Name and phone are required")
	case "Email":
		return errors.New("Email address is invalid")
	default:
		return err
	}
}

// ToLead builds a Lead from the validated request. ID, SessionID and
// CreatedAt are assigned by the store on creation.
func (r *CreateLeadRequest) ToLead() *Lead {
	return &Lead{
		Countries:      r.Countries,
		FieldOfStudy:   r.FieldOfStudy,
		ProgramOfStudy: r.ProgramOfStudy,
		Budget:         r.Budget,
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		LookingFor:     r.LookingFor,
	}
}
