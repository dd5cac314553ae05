package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Build-order errors

type OrderError struct {
	*DomainError
}

func NewOrderError(message string) *OrderError {
	return &OrderError{DomainError: &DomainError{Message: message}}
}

// StaleHandleError is raised when a handle outlives the order it referred to.
// Reaching one means a component kept a reference across a removal.
type StaleHandleError struct {
	*OrderError
	Index      int
	Generation uint32
	Current    uint32
}

func NewStaleHandleError(index int, generation, current uint32) *StaleHandleError {
	return &StaleHandleError{
		OrderError: NewOrderError(fmt.Sprintf("stale order handle %d#%d (slot is at generation %d)", index, generation, current)),
		Index:      index,
		Generation: generation,
		Current:    current,
	}
}

// Resource-site errors

type SiteError struct {
	*DomainError
	SiteIndex int
}

func NewSiteError(message string, siteIndex int) *SiteError {
	return &SiteError{DomainError: &DomainError{Message: message}, SiteIndex: siteIndex}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
