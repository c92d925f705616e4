package services

// Service errors
var (
	ErrNotSignedIn        = &ServiceError{Message: "not signed in"}
	ErrDuplicateClassName = &ServiceError{Message: "a class with this name already exists"}
	ErrUnknownClass       = &ServiceError{Message: "class not found"}
	ErrEntryNotFound      = &ServiceError{Message: "ranking entry not found"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
