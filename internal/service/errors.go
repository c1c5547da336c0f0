package service

import "errors"

// Kind classifies a service failure so transports can map it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	// KindIO means a blob could not be read or written.
	KindIO
	// KindStorage means a metadata transaction failed.
	KindStorage
	// KindInconsistent means a compensating action failed and blobs and rows may disagree.
	KindInconsistent
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindIO:
		return "io"
	case KindStorage:
		return "storage"
	case KindInconsistent:
		return "inconsistent"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails.
// Message is safe to show to API callers; Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal when err is not a *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func invalid(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

func notFound(msg string) *Error {
	return newError(KindNotFound, msg, nil)
}

func conflict(msg string) *Error {
	return newError(KindConflict, msg, nil)
}

// User-facing messages.
const (
	MsgSuccess = "Success"

	msgAppIDRequired      = "App ID is required."
	msgDocRequired        = "Document is required."
	msgMetaDataRequired   = "Meta Data is required."
	msgNoApp              = "No app found with the specified id."
	msgInsertFailed       = "Failed to insert document. Please try again."
	msgDocIDRequired      = "Document ID is required."
	msgDocIDNotFound      = "Document ID not found."
	msgDeleteFailed       = "Unable to delete the docs"
	msgReadFailed         = "Unable to read the document."
	msgStoreFailed        = "Unable to store the document."
	msgInconsistent       = "Document storage is in an inconsistent state. Please contact support."
	msgNameRequired       = "Name is required."
	msgEmailRequired      = "Email is required."
	msgInvalidEmail       = "Invalid Email format."
	msgEmailExists        = "Client email already exists."
	msgClientIDRequired   = "Client ID is required."
	msgClientUpdateFields = "At least one field to update (name or email) must be provided."
	msgNoClient           = "No client found with the specified id."
	msgDataKeysRequired   = "Data keys are required."
	msgInvalidDataKeys    = "Invalid data keys format. Please provide a valid JSON object."
	msgAppNameExists      = "App name already exists."
	msgAppUpdateFields    = "At least one field to update (name or data keys) must be provided."
	msgDataKeysLocked     = "Data Keys cannot be modified because documents exist for this App ID. Please delete all associated documents to modify Data Keys."
	msgAddClientFailed    = "Failed to add client. Please try again."
	msgModifyClientFailed = "Failed to modify client. Please try again."
	msgAddAppFailed       = "Failed to add app. Please try again."
	msgModifyAppFailed    = "Failed to modify app. Please try again."
	msgRegistryFailed     = "Unable to verify the app. Please try again."
)
