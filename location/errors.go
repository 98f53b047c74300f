// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"errors"
	"fmt"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/lib/pq"
	"github.com/nitchau/handyman-sub001/apperr"
)

// Kind classifies a failed location write.
type Kind int

const (
	// KindTransport covers connection, driver and any other unclassified failure.
	KindTransport Kind = iota
	// KindInvalid means the point or radius was rejected before reaching the database.
	KindInvalid
	// KindNotFound means no row has the given id.
	KindNotFound
	// KindConstraint means the database rejected the values.
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConstraint:
		return "constraint"
	default:
		return "transport"
	}
}

// WriteError describes why a location was not applied.
type WriteError struct {
	Kind  Kind
	Table string
	ID    string
	Err   error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("updating %s %s location (%s): %v", e.Table, e.ID, e.Kind, e.Err)
	}

	return fmt.Sprintf("updating %s %s location (%s)", e.Table, e.ID, e.Kind)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes invalid writes match apperr.ErrInvalidInput.
func (e *WriteError) Is(target error) bool {
	return e.Kind == KindInvalid && target == apperr.ErrInvalidInput
}

// IsNotFound reports whether err is a WriteError for a missing row.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsConstraint reports whether err is a WriteError raised by a database constraint.
func IsConstraint(err error) bool {
	return kindOf(err) == KindConstraint
}

// Applied reports whether a write succeeded, for callers that only need a yes/no.
func Applied(err error) bool {
	return err == nil
}

func kindOf(err error) Kind {
	var writeErr *WriteError
	if errors.As(err, &writeErr) {
		return writeErr.Kind
	}

	return -1
}

// classify maps a driver error to a Kind.
func classify(err error) Kind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return KindConstraint
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) && duckErr.Type == duckdb.ErrorTypeConstraint {
		return KindConstraint
	}

	return KindTransport
}
