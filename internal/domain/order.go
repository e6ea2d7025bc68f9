package domain

import (
	"fmt"
	"regexp"
	"time"
)

var orderCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Order is the root of a work-breakdown structure.
type Order struct {
	ID          string
	Code        string
	Name        string
	WeightBasis WeightBasis
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateCode checks that Code is non-empty and matches the required
// format: an uppercase letter followed by 1-9 uppercase letters or digits.
func (o *Order) ValidateCode() error {
	if o.Code == "" {
		return fmt.Errorf("order code is required (use --code flag)")
	}
	if !orderCodePattern.MatchString(o.Code) {
		return fmt.Errorf("order code %q must be 2-10 uppercase letters or digits starting with a letter (e.g. ORD24)", o.Code)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers Code; if empty it truncates ID to 8 characters.
func (o *Order) DisplayID() string {
	if o.Code != "" {
		return o.Code
	}
	if len(o.ID) >= 8 {
		return o.ID[:8]
	}
	return o.ID
}
