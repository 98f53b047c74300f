// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package quote validates and stores homeowner quote requests sent to contractors.
package quote

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/nitchau/handyman-sub001/utils/textutil"
)

// Timeline is how soon the homeowner wants the work done.
type Timeline string

const (
	TimelineASAP       Timeline = "ASAP"
	TimelineTwoWeeks   Timeline = "Within 2 weeks"
	TimelineOneToThree Timeline = "1-3 months"
	TimelineFlexible   Timeline = "Flexible"
)

// Timelines lists the accepted timeline values in display order.
var Timelines = []Timeline{TimelineASAP, TimelineTwoWeeks, TimelineOneToThree, TimelineFlexible}

// Valid reports whether t is exactly one of the accepted literals.
func (t Timeline) Valid() bool {
	for _, v := range Timelines {
		if t == v {
			return true
		}
	}

	return false
}

// Limits on the free text fields, in characters.
const (
	DescriptionMin = 10
	DescriptionMax = 2000
	SenderNameMax  = 100
)

// Request is a validated quote request.
type Request struct {
	Description string   `json:"description"            validate:"min=10,max=2000"`
	Timeline    Timeline `json:"timeline"               validate:"timeline"`
	ZipCode     string   `json:"zip_code"               validate:"zip5"`
	SenderName  string   `json:"sender_name,omitempty"  validate:"omitempty,max=100"`
	SenderEmail string   `json:"sender_email,omitempty" validate:"omitempty,email"`
}

// Violation is a single field level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the full list of failures for one input.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, violation.Field+": "+violation.Message)
	}

	return "invalid quote request: " + strings.Join(parts, "; ")
}

// Is makes Violations match apperr.ErrInvalidInput.
func (v Violations) Is(target error) bool {
	return target == apperr.ErrInvalidInput
}

// fieldOrder is the order violations are reported in.
var fieldOrder = []string{"description", "timeline", "zip_code", "sender_name", "sender_email"}

var zipRegex = regexp.MustCompile(`^\d{5}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	if err := v.RegisterValidation("timeline", func(fl validator.FieldLevel) bool {
		return Timeline(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("zip5", func(fl validator.FieldLevel) bool {
		return zipRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Validate maps an untyped record to a Request. Either the request or a
// non-empty Violations is returned, never both: a single failing field
// rejects the whole input. Every failing field is reported.
func Validate(input map[string]any) (*Request, Violations) {
	var violations Violations

	typeErrors := map[string]bool{}

	str := func(field string) string {
		raw, ok := input[field]
		if !ok || raw == nil {
			return ""
		}

		s, ok := raw.(string)
		if !ok {
			typeErrors[field] = true
			violations = append(violations, Violation{Field: field, Message: "must be a string"})

			return ""
		}

		return s
	}

	req := &Request{
		Description: textutil.NFC(str("description")),
		Timeline:    Timeline(str("timeline")),
		ZipCode:     str("zip_code"),
		SenderName:  str("sender_name"),
		SenderEmail: str("sender_email"),
	}

	if err := validate.Struct(req); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, Violations{{Field: "", Message: err.Error()}}
		}

		for _, fe := range fieldErrors {
			if typeErrors[fe.Field()] {
				continue
			}

			violations = append(violations, Violation{Field: fe.Field(), Message: message(fe)})
		}
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return fieldIndex(violations[i].Field) < fieldIndex(violations[j].Field)
		})

		return nil, violations
	}

	return req, nil
}

// ValidateJSON decodes a JSON object and validates it. A decoding error is
// returned separately from field violations.
func ValidateJSON(data []byte) (*Request, Violations, error) {
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, nil, fmt.Errorf("decoding quote request: %v: %w", err, apperr.ErrInvalidInput)
	}

	if input == nil {
		return nil, nil, fmt.Errorf("quote request must be a JSON object: %w", apperr.ErrInvalidInput)
	}

	req, violations := Validate(input)

	return req, violations, nil
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "description":
		return fmt.Sprintf("must be between %d and %d characters", DescriptionMin, DescriptionMax)
	case "timeline":
		quoted := make([]string, 0, len(Timelines))
		for _, t := range Timelines {
			quoted = append(quoted, fmt.Sprintf("%q", t))
		}

		return "must be one of " + strings.Join(quoted, ", ")
	case "zip_code":
		return "must be a 5 digit ZIP code"
	}

	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func fieldIndex(field string) int {
	for i, f := range fieldOrder {
		if f == field {
			return i
		}
	}

	return len(fieldOrder)
}
