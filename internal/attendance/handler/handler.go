// Package handler exposes the attendance HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

// Operator roles known to the API.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
	RoleTerminal = "terminal"
)

// dateParam parses a YYYY-MM-DD query parameter, defaulting to today in
// the given location when absent.
func dateParam(r *http.Request, name string, loc *time.Location) (domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.DateOf(time.Now().In(loc)), nil
	}

	date, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, errors.ValidationMessage(name + " must be YYYY-MM-DD")
	}
	return date, nil
}

// rangeParams parses from/to query parameters, defaulting both to today.
func rangeParams(r *http.Request, loc *time.Location) (domain.Date, domain.Date, error) {
	from, err := dateParam(r, "from", loc)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	to, err := dateParam(r, "to", loc)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	if to.Before(from) {
		return domain.Date{}, domain.Date{}, errors.ValidationMessage("to precedes from")
	}
	return from, to, nil
}
