package model

import "time"

// DefaultSoonDays is the number of days ahead within which a product counts as expiring soon.
const DefaultSoonDays = 7

// ExpiryStatus is the bucket a product falls into relative to a given day.
type ExpiryStatus int

const (
	StatusGood ExpiryStatus = iota
	StatusExpiringSoon
	StatusExpired
)

func (s ExpiryStatus) String() string {
	switch s {
	case StatusExpired:
		return "expired"
	case StatusExpiringSoon:
		return "expiring soon"
	default:
		return "good"
	}
}

// ExpiryPolicy classifies products against a clock and an expiring-soon window.
// SoonDays is taken as is, so the zero value counts only today as expiring soon.
// A nil Now uses time.Now.
type ExpiryPolicy struct {
	SoonDays int
	Now      func() time.Time
}

// NewExpiryPolicy creates a policy with the given window. Negative windows are clamped to zero.
func NewExpiryPolicy(soonDays int) ExpiryPolicy {
	if soonDays < 0 {
		soonDays = 0
	}
	return ExpiryPolicy{SoonDays: soonDays, Now: time.Now}
}

// DefaultExpiryPolicy uses DefaultSoonDays and the wall clock.
func DefaultExpiryPolicy() ExpiryPolicy {
	return NewExpiryPolicy(DefaultSoonDays)
}

// CurrentTime returns the policy clock's time, falling back to time.Now.
func (p ExpiryPolicy) CurrentTime() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p ExpiryPolicy) soonDays() int {
	return max(p.SoonDays, 0)
}

// Status returns the bucket for the product.
func (p ExpiryPolicy) Status(product Product) ExpiryStatus {
	days := product.DaysLeft(p.CurrentTime())
	switch {
	case days < 0:
		return StatusExpired
	case days <= p.soonDays():
		return StatusExpiringSoon
	default:
		return StatusGood
	}
}

// IsExpired reports whether the expiry day is before today.
func (p ExpiryPolicy) IsExpired(product Product) bool {
	return p.Status(product) == StatusExpired
}

// IsExpiringSoon reports whether the product expires today or within the window.
func (p ExpiryPolicy) IsExpiringSoon(product Product) bool {
	return p.Status(product) == StatusExpiringSoon
}

// IsGood reports whether the product expires after the window.
func (p ExpiryPolicy) IsGood(product Product) bool {
	return p.Status(product) == StatusGood
}

// Summarize counts products per bucket.
func (p ExpiryPolicy) Summarize(products []Product) Summary {
	s := Summary{Total: len(products)}
	for _, product := range products {
		switch p.Status(product) {
		case StatusExpired:
			s.Expired++
		case StatusExpiringSoon:
			s.ExpiringSoon++
		default:
			s.Good++
		}
	}
	return s
}

// DaysLeft returns the number of calendar days from now's day to the expiry day.
// Both days are taken in the expiry date's location.
func (p Product) DaysLeft(now time.Time) int {
	loc := p.ExpiryDate.Location()
	today := startOfDay(now.In(loc))
	expiry := startOfDay(p.ExpiryDate)
	// Round to absorb DST shifts.
	hours := expiry.Sub(today).Hours()
	if hours >= 0 {
		return int((hours + 12) / 24)
	}
	return -int((-hours + 12) / 24)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
