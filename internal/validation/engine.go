// Package validation holds the business rules applied to pickup requests:
// creation payload validation and normalisation, the booking lead time, and
// status transition checks. Nothing here performs I/O.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/model"
)

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	houseNumberPattern = regexp.MustCompile(`^(\d+[a-zA-Z]?|[sS]/[nN])$`)
	digitsOnlyPattern  = regexp.MustCompile(`^\d+$`)
	nonDigitPattern    = regexp.MustCompile(`\D`)
)

var suspiciousPhones = buildSuspiciousPhones()

func buildSuspiciousPhones() map[string]bool {
	set := map[string]bool{
		"1234567890": true,
		"0987654321": true,
	}
	for d := '0'; d <= '9'; d++ {
		set[strings.Repeat(string(d), 7)] = true
		set[strings.Repeat(string(d), 10)] = true
	}
	return set
}

// Engine validates pickup payloads against the calendar of a time zone.
type Engine struct {
	loc *time.Location
	now func() time.Time
}

// NewEngine creates an Engine. A nil loc means the process local zone and a
// nil now means time.Now.
func NewEngine(loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{loc: loc, now: now}
}

// Today is the current calendar date in the engine's zone.
func (e *Engine) Today() model.Date {
	return model.NewDate(e.now().In(e.loc))
}

// ValidateAndNormalize checks a creation payload field by field, failing on
// the first violation, and returns the normalised Pending request.
// resolved must be the active material types found for in.MaterialIDs.
func (e *Engine) ValidateAndNormalize(in model.CreatePickupRequest, resolved []model.MaterialType) (model.PickupRequest, error) {
	if err := validateText("full_name", "full name", in.FullName, 3); err != nil {
		return model.PickupRequest{}, err
	}
	if err := ValidateEmail(in.Email); err != nil {
		return model.PickupRequest{}, err
	}
	if err := ValidatePhone(in.Phone); err != nil {
		return model.PickupRequest{}, err
	}
	if err := validateText("street", "street", in.Street, 2); err != nil {
		return model.PickupRequest{}, err
	}
	if err := ValidateHouseNumber(in.Number); err != nil {
		return model.PickupRequest{}, err
	}
	if err := validateText("neighborhood", "neighborhood", in.Neighborhood, 2); err != nil {
		return model.PickupRequest{}, err
	}
	if err := validateText("city", "city", in.City, 2); err != nil {
		return model.PickupRequest{}, err
	}
	date, err := e.ValidateSuggestedDate(in.SuggestedDate)
	if err != nil {
		return model.PickupRequest{}, err
	}
	if err := ValidateMaterials(in.MaterialIDs, resolved); err != nil {
		return model.PickupRequest{}, err
	}

	now := e.now()
	protocol, err := crypto.NewProtocol(now)
	if err != nil {
		return model.PickupRequest{}, fmt.Errorf("generating protocol: %w", err)
	}

	return model.PickupRequest{
		Protocol:      protocol,
		FullName:      strings.TrimSpace(in.FullName),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         DigitsOnly(in.Phone),
		Street:        strings.TrimSpace(in.Street),
		Number:        strings.TrimSpace(in.Number),
		Neighborhood:  strings.TrimSpace(in.Neighborhood),
		City:          strings.TrimSpace(in.City),
		SuggestedDate: date,
		Status:        model.StatusPending,
		Materials:     resolved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ValidateTransition approves moving current to newStatus. Any defined
// status may follow any other, including itself; only Completed and
// Cancelled demand a justification.
func (e *Engine) ValidateTransition(current model.PickupRequest, newStatus, justification string) (model.Transition, error) {
	status := model.Status(newStatus)
	if !status.Valid() {
		return model.Transition{}, ErrInvalidStatus
	}

	justification = strings.TrimSpace(justification)
	if status.RequiresJustification() && justification == "" {
		return model.Transition{}, ErrJustificationRequired
	}

	t := model.Transition{Status: status}
	if justification != "" {
		t.Justification = &justification
	}
	return t, nil
}

// ValidateSuggestedDate parses raw as a calendar date and checks it against
// today and the minimum lead date. RFC 3339 timestamps are accepted and
// reduced to their date in the engine's zone.
func (e *Engine) ValidateSuggestedDate(raw string) (model.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Date{}, invalid("suggested_date", "suggested date is required")
	}

	date, err := model.ParseDate(raw, e.loc)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, raw)
		if tsErr != nil {
			return model.Date{}, invalid("suggested_date", "invalid date")
		}
		date = model.NewDate(ts.In(e.loc))
	}

	today := e.Today()
	if !date.After(today.Time) {
		return model.Date{}, invalid("suggested_date", "suggested date must be in the future")
	}
	if date.Before(MinimumLeadDate(today).Time) {
		return model.Date{}, invalid("suggested_date", fmt.Sprintf("suggested date must be at least %d business days from today", LeadBusinessDays))
	}
	return date, nil
}

func validateText(field, label, value string, minLen int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid(field, label+" is required")
	}
	if len([]rune(value)) < minLen {
		return invalid(field, fmt.Sprintf("%s must be at least %d characters", label, minLen))
	}
	if digitsOnlyPattern.MatchString(value) {
		return invalid(field, label+" cannot contain only numbers")
	}
	return nil
}

// ValidateEmail checks the local@domain.tld shape after trimming.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "invalid email, use the format: example@email.com")
	}
	return nil
}

// DigitsOnly strips every non-digit from s.
func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}

// ValidatePhone checks the digits of phone: 10 or 11 of them, not a known
// throwaway sequence, not a single repeated digit.
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return invalid("phone", "phone is required")
	}

	digits := DigitsOnly(phone)
	if len(digits) < 10 || len(digits) > 11 {
		return invalid("phone", "phone must have 10 or 11 digits")
	}
	if suspiciousPhones[digits] {
		return invalid("phone", "invalid phone (suspicious sequence)")
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return invalid("phone", "invalid phone (repeated digits)")
	}
	return nil
}

// ValidateHouseNumber accepts digits with an optional trailing letter, or S/N.
func ValidateHouseNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return invalid("number", "number is required")
	}
	if !houseNumberPattern.MatchString(number) {
		return invalid("number", "invalid number, use digits only (e.g. 123, 123A) or S/N")
	}
	return nil
}

// ValidateMaterials checks that every requested id resolved to an active
// material type. Duplicated ids resolve once and are rejected as well.
func ValidateMaterials(requested []int64, resolved []model.MaterialType) error {
	if len(requested) == 0 {
		return invalid("material_ids", "select at least one material type")
	}

	active := make(map[int64]bool, len(resolved))
	for _, m := range resolved {
		if m.Active {
			active[m.ID] = true
		}
	}

	if len(resolved) != len(requested) {
		return invalid("material_ids", "one or more material types are invalid")
	}
	for _, id := range requested {
		if !active[id] {
			return invalid("material_ids", "one or more material types are invalid")
		}
	}
	return nil
}
