package services

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationReason classifies why a draft was rejected before any write.
type ValidationReason string

const (
	ReasonMissingTarget      ValidationReason = "missing_target"
	ReasonTargetNotFound     ValidationReason = "target_not_found"
	ReasonDisciplineMismatch ValidationReason = "discipline_mismatch"
	ReasonMissingSlug        ValidationReason = "missing_slug"
	ReasonUnknownAction      ValidationReason = "unknown_action"
	ReasonDuplicateAppend    ValidationReason = "duplicate_append"
	ReasonSlugConflict       ValidationReason = "slug_conflict"
	ReasonConceptCycle       ValidationReason = "concept_cycle"
)

// ValidationError rejects a request before any write. It is never retried
// automatically: the remedy is regenerating the draft, not resubmitting the
// same one.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

// ConsistencyFault marks a state that validation should have excluded, e.g.
// an append target that disappeared between validation and merge. The
// operation aborts and is not retried silently.
type ConsistencyFault struct {
	Op  string
	Err error
}

func (e *ConsistencyFault) Error() string {
	return fmt.Sprintf("consistency fault in %s: %v", e.Op, e.Err)
}

func (e *ConsistencyFault) Unwrap() error { return e.Err }

// PartialAttributionFailure reports a publish where the module and/or photo
// group committed but a later attribution step failed. Nothing is rolled
// back; the caller can retry the named step specifically.
type PartialAttributionFailure struct {
	Step         string
	ModuleSlug   string
	PhotoGroupID uuid.UUID
	Err          error
}

func (e *PartialAttributionFailure) Error() string {
	return fmt.Sprintf("attribution step %q failed for module %q: %v", e.Step, e.ModuleSlug, e.Err)
}

func (e *PartialAttributionFailure) Unwrap() error { return e.Err }
