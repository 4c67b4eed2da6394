// Package http provides the web API, index page and static assets.
//
// This file decodes and validates the body of expense creation requests.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"expensetracker/internal/core"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

var errInvalidBody = errors.New("Invalid request body")

// createExpenseRequest is the JSON body of POST /api/expenses. Amount stays
// raw so both numbers and numeric strings are accepted.
type createExpenseRequest struct {
	Description string          `json:"description" validate:"required"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category" validate:"required"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// expenseInput is a validated creation request.
type expenseInput struct {
	Description string
	Amount      core.Money
	Category    string
	Date        string
}

// parseCreateExpense decodes and validates the request body. Problems are
// reported one at a time in this order: body, description, category,
// amount, date. The returned error text is safe to show to the client.
func parseCreateExpense(r *http.Request) (expenseInput, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return expenseInput{}, errInvalidBody
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return expenseInput{}, errInvalidBody
	}

	var req createExpenseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return expenseInput{}, errInvalidBody
	}
	req.Description = sanitizeInput(req.Description)
	req.Category = sanitizeInput(req.Category)
	req.Date = strings.TrimSpace(req.Date)

	failed := map[string]bool{}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return expenseInput{}, errInvalidBody
		}
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
	}

	switch {
	case failed["Description"]:
		return expenseInput{}, errors.New(validationMessage(core.ErrEmptyDescription))
	case failed["Category"]:
		return expenseInput{}, errors.New(validationMessage(core.ErrEmptyCategory))
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return expenseInput{}, errors.New(validationMessage(err))
	}

	if failed["Date"] {
		return expenseInput{}, errors.New(validationMessage(core.ErrInvalidDate))
	}

	return expenseInput{
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		Date:        req.Date,
	}, nil
}

// parseAmount accepts a JSON number or numeric string. A missing amount
// counts as zero; null, booleans and objects are invalid.
func parseAmount(raw json.RawMessage) (core.Money, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return core.Money{}, core.ErrNonPositiveAmount
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.Money{}, core.ErrInvalidAmount
		}
		return core.ParseAmount(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return core.ParseAmount(string(raw))
	default:
		return core.Money{}, core.ErrInvalidAmount
	}
}

// validationMessage maps a validation error to the client-facing message.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description cannot be empty"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category cannot be empty"
	case errors.Is(err, core.ErrNonPositiveAmount):
		return "Amount must be greater than 0"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount"
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date, expected YYYY-MM-DD"
	default:
		return err.Error()
	}
}
