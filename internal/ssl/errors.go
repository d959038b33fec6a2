package ssl

import (
	"errors"
	"fmt"
)

// Common sentinel errors for credential loading. Higher layers match on
// these to attach remediation hints instead of searching message text.
var (
	// ErrNoPrivateKey indicates that no private key was found in the
	// configured store or PEM material.
	ErrNoPrivateKey = errors.New("no private key found")

	// ErrNoCertificate indicates that no certificate chain was found for the
	// configured alias or PEM file.
	ErrNoCertificate = errors.New("no certificate found")

	// ErrNoTrustedCertificates indicates that a truststore or CA bundle
	// yielded no trusted certificates.
	ErrNoTrustedCertificates = errors.New("no trusted certificates found")

	// ErrStoreDecrypt indicates that a container store or private key could
	// not be decrypted with the configured password.
	ErrStoreDecrypt = errors.New("store decryption failed")

	// ErrKeyCertMismatch indicates that the loaded private key does not
	// belong to the leaf certificate.
	ErrKeyCertMismatch = errors.New("private key does not match certificate")
)

// ConfigurationError reports a missing, contradictory, or invalid setting.
// Always fatal at construction; never produced after startup.
type ConfigurationError struct {
	Key     string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		if e.Cause != nil {
			return fmt.Sprintf("ssl config error at %s: %s: %v", e.Key, e.Message, e.Cause)
		}
		return fmt.Sprintf("ssl config error at %s: %s", e.Key, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("ssl config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ssl config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message}
}

// NewConfigurationErrorWithCause creates a new ConfigurationError with a cause.
func NewConfigurationErrorWithCause(key, message string, cause error) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message, Cause: cause}
}

// CredentialError reports a store or PEM file that could not be parsed,
// decrypted, or that lacked the required key, certificate, or trust material.
// Fatal at construction.
type CredentialError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CredentialError) Error() string {
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("credential error at %s: %s: %v", e.Path, e.Message, e.Cause)
		}
		return fmt.Sprintf("credential error at %s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("credential error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *CredentialError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *CredentialError) Is(target error) bool {
	_, ok := target.(*CredentialError)
	return ok || errors.Is(e.Cause, target)
}

// NewCredentialError creates a new CredentialError.
func NewCredentialError(path, message string) *CredentialError {
	return &CredentialError{Path: path, Message: message}
}

// NewCredentialErrorWithCause creates a new CredentialError with a cause.
func NewCredentialErrorWithCause(path, message string, cause error) *CredentialError {
	return &CredentialError{Path: path, Message: message, Cause: cause}
}

// InitializationError reports a context-build failure not covered by
// configuration or credential errors, decorated with a remediation hint when
// the root cause is recognizable. Fatal at construction.
type InitializationError struct {
	Listener Listener
	Message  string
	Hint     string
	Cause    error
}

func (e *InitializationError) Error() string {
	msg := fmt.Sprintf("ssl init error for %s: %s", e.Listener, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *InitializationError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *InitializationError) Is(target error) bool {
	_, ok := target.(*InitializationError)
	return ok || errors.Is(e.Cause, target)
}

// newInitializationError wraps a context-build failure and attaches the
// remediation hint matching the wrapped error kind.
func newInitializationError(listener Listener, message string, cause error) *InitializationError {
	return &InitializationError{
		Listener: listener,
		Message:  message,
		Hint:     remediationHint(cause),
		Cause:    cause,
	}
}

// remediationHint maps recognizable credential failures to operator guidance.
func remediationHint(err error) string {
	switch {
	case errors.Is(err, ErrNoPrivateKey):
		return "the keystore or PEM contains no key; check for confused key and certificate arguments, or a key password that is missing or superfluous"
	case errors.Is(err, ErrNoCertificate):
		return "the keystore or PEM contains no certificate; check for confused key and certificate arguments"
	case errors.Is(err, ErrKeyCertMismatch):
		return "the private key does not belong to the leaf certificate; check for confused key and certificate arguments"
	case errors.Is(err, ErrStoreDecrypt):
		return "the store or key password does not match"
	default:
		return ""
	}
}

// HandshakeError reports a per-connection failure during engine creation or
// handshake. Never fatal to the process; scoped to a single connection.
type HandshakeError struct {
	Listener Listener
	Peer     string
	Cause    error
}

func (e *HandshakeError) Error() string {
	if e.Peer != "" {
		return fmt.Sprintf("tls handshake with %s failed on %s: %v", e.Peer, e.Listener, e.Cause)
	}
	return fmt.Sprintf("tls handshake failed on %s: %v", e.Listener, e.Cause)
}

// Unwrap returns the underlying error.
func (e *HandshakeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *HandshakeError) Is(target error) bool {
	_, ok := target.(*HandshakeError)
	return ok || errors.Is(e.Cause, target)
}
