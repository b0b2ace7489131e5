package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a tracked perishable item.
type Product struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	ExpiryDate time.Time `json:"expiryDate" db:"expiry_date"`
	Memo       string    `json:"memo" db:"memo"`
	Archived   bool      `json:"archived" db:"archived"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// SetArchived marks the product as soft-deleted.
func (p *Product) SetArchived() {
	p.Archived = true
}

// ResetArchived brings an archived product back to the active list.
func (p *Product) ResetArchived() {
	p.Archived = false
}

// ProductRequest represents the payload for creating or editing a product.
type ProductRequest struct {
	Title      string `json:"title"`
	ExpiryDate string `json:"expiryDate"`
	Memo       string `json:"memo"`
}

// Validate checks the request and returns the parsed expiry date.
func (r *ProductRequest) Validate() (time.Time, error) {
	if r.Title == "" {
		return time.Time{}, ErrMissingTitle
	}
	if r.ExpiryDate == "" {
		return time.Time{}, ErrMissingExpiryDate
	}
	return ParseDate(r.ExpiryDate)
}

// ParseDate accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// DateLayout is the calendar date format used in requests and import files.
const DateLayout = "2006-01-02"

// DeleteRequest is the payload for removing an index set from a filtered list.
type DeleteRequest struct {
	Filter  string `json:"filter"`
	Indexes []int  `json:"indexes"`
}

// Summary counts active products per expiry bucket.
type Summary struct {
	Total        int `json:"total"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
	Good         int `json:"good"`
}
