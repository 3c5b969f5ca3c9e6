package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
)

var (
	ErrNotFound             = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrRegistrationClosed   = errors.New("registration closed")
	ErrTournamentFull       = errors.New("tournament is full")
	ErrUnavailable          = errors.New("backend unavailable")
)

// BackendError is a non-success response from the hosted function. Err is
// one of the sentinels above when the response could be classified.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: %d", e.Status)
	}
	return fmt.Sprintf("backend error: %d: %s", e.Status, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// the hosted function answers in Russian; match on stable fragments
var messageErrors = []struct {
	fragment string
	err      error
}{
	{"уже зарегистрированы", ErrAlreadyRegistered},
	{"Регистрация закрыта", ErrRegistrationClosed},
	{"Нет свободных мест", ErrTournamentFull},
	{"Регистрация не найдена", ErrRegistrationNotFound},
	{"Турнир не найден", ErrNotFound},
	{"Tournament not found", ErrNotFound},
}

func newBackendError(status int, body []byte) *BackendError {
	var payload MessageResponse
	_ = json.Unmarshal(body, &payload)

	e := &BackendError{Status: status, Message: payload.Error}
	for _, m := range messageErrors {
		if payload.Error != "" && strings.Contains(payload.Error, m.fragment) {
			e.Err = m.err
			return e
		}
	}

	switch {
	case status == fasthttp.StatusNotFound:
		e.Err = ErrNotFound
	case status >= fasthttp.StatusInternalServerError:
		e.Err = ErrUnavailable
	}
	return e
}
