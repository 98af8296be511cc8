/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package manager

import (
	"errors"
	"fmt"
)

// Code categorizes an error raised by the client.
type Code string

const (
	// CodeTransport indicates a connection, TLS, or timeout failure before
	// any HTTP status was received.
	CodeTransport Code = "Transport"
	// CodeAuthentication indicates credentials rejected at login.
	CodeAuthentication Code = "Authentication"
	// CodeSessionExpired indicates an expired session detected mid-flight.
	// It is handled internally by relogin and normally never surfaces.
	CodeSessionExpired Code = "SessionExpired"
	// CodeSessionExpiredAfterRelogin indicates the replayed request still
	// reported an expired session. Fatal to the session.
	CodeSessionExpiredAfterRelogin Code = "SessionExpiredAfterRelogin"
	// CodeTenantSubdomainNotFound indicates the controller does not know
	// the requested tenant subdomain.
	CodeTenantSubdomainNotFound Code = "TenantSubdomainNotFound"
	// CodeBadRequest indicates a 4xx with a structured controller error.
	CodeBadRequest Code = "BadRequest"
	// CodeForbidden indicates HTTP 403 after the relogin retry is exhausted.
	CodeForbidden Code = "Forbidden"
	// CodeNotFound indicates HTTP 404.
	CodeNotFound Code = "NotFound"
	// CodeConflict indicates HTTP 409; retry policy is owned by the caller.
	CodeConflict Code = "Conflict"
	// CodeServerError indicates HTTP 5xx.
	CodeServerError Code = "ServerError"
	// CodeResponseParse indicates a JSON decode failure or a missing data
	// envelope.
	CodeResponseParse Code = "ResponseParse"
	// CodeInvalidOperation indicates a method call that is invalid for the
	// session's current state (for example a tenant switching views).
	CodeInvalidOperation Code = "InvalidOperation"
	// CodeAPIVersion indicates an endpoint unsupported by the running
	// controller version.
	CodeAPIVersion Code = "APIVersion"
	// CodeAPIView indicates an endpoint not allowed for the session type.
	CodeAPIView Code = "APIView"
	// CodeDownload indicates a failed file download.
	CodeDownload Code = "Download"
	// CodeServerReadyTimeout indicates the controller did not come back
	// within the restart window.
	CodeServerReadyTimeout Code = "ServerReadyTimeout"
)

// Error is the typed error surfaced by the request engine and the session.
// Message is short and human readable, Details carries the verbatim
// controller details string when one was present, Status is the HTTP status
// when one was observed.
type Error struct {
	Code    Code
	Message string
	Details string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is transient. Conflicts are not
// retried here: the controller's "already in progress" answer is surfaced
// typed and the retry policy belongs to the caller.
func (e *Error) Retryable() bool {
	return e.Code == CodeTransport || e.Code == CodeServerError
}

// IsCode reports whether err (or anything it wraps) is a manager error with
// the given code.
func IsCode(err error, code Code) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

func newTransportError(cause error) *Error {
	return &Error{Code: CodeTransport, Message: "request failed before receiving a response", Cause: cause}
}

func newAuthenticationError(username string) *Error {
	return &Error{Code: CodeAuthentication, Message: fmt.Sprintf("username and/or password incorrect for %q", username)}
}

func newHTTPError(code Code, status int, info ErrorInfo) *Error {
	msg := info.Message
	if msg == "" {
		msg = fmt.Sprintf("controller returned HTTP %d", status)
	}
	e := &Error{Code: code, Message: msg, Details: info.Details, Status: status}
	if info.Code != "" {
		e.Details = joinDetails(info.Code, info.Details)
	}
	return e
}

func joinDetails(code, details string) string {
	if details == "" {
		return code
	}
	return code + ": " + details
}

func newParseError(msg string, cause error) *Error {
	return &Error{Code: CodeResponseParse, Message: msg, Cause: cause}
}

func newInvalidOperationError(msg string) *Error {
	return &Error{Code: CodeInvalidOperation, Message: msg}
}
