package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/domain"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrUnreachable        = errors.New("cannot reach server")
	ErrUnauthorized       = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = fmt.Errorf("remote: %w", domain.ErrForbidden)
	ErrNotFound           = fmt.Errorf("remote: %w", domain.ErrNotFound)
	ErrServer             = errors.New("server error")
)

// Error is a failed remote call.
type Error struct {
	Kind    error
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseError reports a 2xx response whose body does not match the expected schema.
type ParseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse " + e.Op + " response"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Message renders err as a notice for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(apiErr.Kind, ErrUnreachable):
			return "Cannot reach server. Is the backend running?"
		case errors.Is(apiErr.Kind, ErrUnauthorized):
			return "Session expired. Please login again"
		case apiErr.Message != "":
			return apiErr.Message
		case errors.Is(apiErr.Kind, ErrNotFound):
			return "Not found."
		case errors.Is(apiErr.Kind, ErrForbidden):
			return "You do not have permission to perform this action."
		default:
			return "Request failed. Try again."
		}
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "Unexpected response from server."
	}
	return err.Error()
}

func errorFromResponse(status int, body []byte) *Error {
	msg, fields := parseErrorBody(body)
	e := &Error{Status: status, Message: msg, Fields: fields}
	switch {
	case status == 401:
		e.Kind = ErrUnauthorized
	case status == 403:
		e.Kind = ErrForbidden
	case status == 404:
		e.Kind = ErrNotFound
	case status == 400 || status == 422:
		e.Kind = ErrValidation
	default:
		e.Kind = ErrServer
	}
	return e
}

// parseErrorBody understands {"detail": ".."}, {"error": ".."} and field maps
// such as {"price": ["must be positive"], "title": "required"}. Field errors
// are joined as "field: a, b; other: c" with fields sorted by name.
func parseErrorBody(body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		trimmed = truncateRunes(trimmed, maxPlainErrorRunes)
		if strings.HasPrefix(trimmed, "<") {
			return "", nil
		}
		return trimmed, nil
	}
	for _, key := range []string{"detail", "error"} {
		if raw, ok := obj[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s, nil
			}
		}
	}

	fields := make(map[string][]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k, raw := range obj {
		fields[k] = fieldMessages(raw)
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(fields[k], ", ")))
	}
	return strings.Join(parts, "; "), fields
}

const maxPlainErrorRunes = 200

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func fieldMessages(raw json.RawMessage) []string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, scalarText(item))
		}
		return out
	}
	return []string{scalarText(raw)}
}

func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
