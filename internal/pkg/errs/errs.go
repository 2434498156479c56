package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification via errors.Is. Each typed error below
// unwraps to exactly one of these.
var (
	ErrValueIsRequired     = errors.New("value is required")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrAuthentication      = errors.New("caller identity is missing or invalid")
	ErrAuthorization       = errors.New("caller is not permitted to perform this action")
	ErrInvalidTransition   = errors.New("transition is not allowed from the current state")
	ErrDecryption          = errors.New("payload could not be decrypted")
	ErrEncryptionSizeLimit = errors.New("payload exceeds asymmetric encryption capacity")
	ErrLedgerUnavailable   = errors.New("ledger is unavailable")
	ErrObjectNotFound      = errors.New("object not found")
)

// sanitize strips newlines from values interpolated into error messages
// so a single error always renders as one log line.
func sanitize(v any) string {
	return strings.ReplaceAll(strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " "), "\r", " ")
}

// ValueIsRequiredError indicates a required value was not provided.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, sanitize(e.ParamName), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, sanitize(e.ParamName))
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsInvalidError indicates a value was provided but is not acceptable.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, sanitize(e.ParamName), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, sanitize(e.ParamName))
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// AuthenticationError indicates the caller presented no valid identity.
type AuthenticationError struct {
	Reason string
	Cause  error
}

func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

func NewAuthenticationErrorWithCause(reason string, cause error) *AuthenticationError {
	return &AuthenticationError{Reason: reason, Cause: cause}
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrAuthentication, sanitize(e.Reason), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrAuthentication, sanitize(e.Reason))
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// AuthorizationError indicates a valid identity attempted an action outside
// its organization or company scope. No protected data may accompany it.
type AuthorizationError struct {
	Action string
	Actor  string
	Cause  error
}

func NewAuthorizationError(action, actor string) *AuthorizationError {
	return &AuthorizationError{Action: action, Actor: actor}
}

func NewAuthorizationErrorWithCause(action, actor string, cause error) *AuthorizationError {
	return &AuthorizationError{Action: action, Actor: actor, Cause: cause}
}

func (e *AuthorizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: action is: %s, actor is: %s (cause: %v)",
			ErrAuthorization, sanitize(e.Action), sanitize(e.Actor), e.Cause)
	}
	return fmt.Sprintf("%s: action is: %s, actor is: %s", ErrAuthorization, sanitize(e.Action), sanitize(e.Actor))
}

func (e *AuthorizationError) Unwrap() error {
	return ErrAuthorization
}

// InvalidTransitionError indicates a state-machine guard was not met.
// It is a business rejection and must never be retried.
type InvalidTransitionError struct {
	Action       string
	CurrentState string
	Cause        error
}

func NewInvalidTransitionError(action, currentState string) *InvalidTransitionError {
	return &InvalidTransitionError{Action: action, CurrentState: currentState}
}

func NewInvalidTransitionErrorWithCause(action, currentState string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{Action: action, CurrentState: currentState, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: action is: %s, current state is: %s (cause: %v)",
			ErrInvalidTransition, sanitize(e.Action), sanitize(e.CurrentState), e.Cause)
	}
	return fmt.Sprintf("%s: action is: %s, current state is: %s",
		ErrInvalidTransition, sanitize(e.Action), sanitize(e.CurrentState))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// DecryptionError indicates a key or ciphertext mismatch. Callers must treat
// it as fail-closed: no partial plaintext is ever attached to it.
type DecryptionError struct {
	Reason string
	Cause  error
}

func NewDecryptionError(reason string) *DecryptionError {
	return &DecryptionError{Reason: reason}
}

func NewDecryptionErrorWithCause(reason string, cause error) *DecryptionError {
	return &DecryptionError{Reason: reason, Cause: cause}
}

func (e *DecryptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrDecryption, sanitize(e.Reason), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDecryption, sanitize(e.Reason))
}

func (e *DecryptionError) Unwrap() error {
	return ErrDecryption
}

// EncryptionSizeLimitError indicates a plaintext does not fit the recipient
// key's padding capacity. The envelope codec exists to make this unreachable
// for payload data; it can still occur for undersized recipient keys.
type EncryptionSizeLimitError struct {
	Size  int
	Limit int
	Cause error
}

func NewEncryptionSizeLimitError(size, limit int) *EncryptionSizeLimitError {
	return &EncryptionSizeLimitError{Size: size, Limit: limit}
}

func (e *EncryptionSizeLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %d bytes, limit is %d (cause: %v)", ErrEncryptionSizeLimit, e.Size, e.Limit, e.Cause)
	}
	return fmt.Sprintf("%s: %d bytes, limit is %d", ErrEncryptionSizeLimit, e.Size, e.Limit)
}

func (e *EncryptionSizeLimitError) Unwrap() error {
	return ErrEncryptionSizeLimit
}

// LedgerUnavailableError indicates a transport or consensus-layer failure.
// It is the only error kind in this package that is retryable.
type LedgerUnavailableError struct {
	Operation string
	Cause     error
}

func NewLedgerUnavailableError(operation string) *LedgerUnavailableError {
	return &LedgerUnavailableError{Operation: operation}
}

func NewLedgerUnavailableErrorWithCause(operation string, cause error) *LedgerUnavailableError {
	return &LedgerUnavailableError{Operation: operation, Cause: cause}
}

func (e *LedgerUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: operation is: %s (cause: %v)", ErrLedgerUnavailable, sanitize(e.Operation), e.Cause)
	}
	return fmt.Sprintf("%s: operation is: %s", ErrLedgerUnavailable, sanitize(e.Operation))
}

func (e *LedgerUnavailableError) Unwrap() error {
	return ErrLedgerUnavailable
}

// ObjectNotFoundError indicates an object does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, sanitize(e.ParamName), sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}
