package warehouse

import "fmt"

// ValidationError reports a malformed or missing required field. It is never
// retried; the caller gets field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing staging record or dimension row. Batch
// contexts treat it as a skip, single-record contexts as a hard error.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ConflictError reports a duplicate key that indicates genuine operator error,
// e.g. editing a staging record that was already transferred. Races on
// dimension or fact inserts are resolved internally and never surface as this.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InvalidDimensionError reports an aggregation or ranking request outside the
// enumerated dimension vocabulary.
type InvalidDimensionError struct {
	Name string
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid dimension %q", e.Name)
}

// PartialTransferError reports a batch transfer that partially failed. Counts
// for the committed subset are preserved in the accompanying TransferResult;
// FailedIDs lists the staging ids whose per-record transaction rolled back.
type PartialTransferError struct {
	FailedIDs []uint
}

func (e *PartialTransferError) Error() string {
	return fmt.Sprintf("transfer failed for %d record(s)", len(e.FailedIDs))
}
