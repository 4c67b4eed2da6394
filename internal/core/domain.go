package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for Expense.Date.
const DateLayout = "2006-01-02"

type (
	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"` // YYYY-MM-DD
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	ErrEmptyDescription  = errors.New("description cannot be empty")
	ErrEmptyCategory     = errors.New("category cannot be empty")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
)

// IsValidation reports whether err is caused by rejected user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrNonPositiveAmount,
		ErrEmptyDescription,
		ErrEmptyCategory,
		ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return ValidateDate(e.Date)
}

