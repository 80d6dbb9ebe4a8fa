package core

import (
	"strings"
	"time"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryBills         Category = "bills"
	CategoryOther         Category = "other"
)

type (
	// Category is one value from the fixed expense category set.
	Category string

	// Expense is a single dated monetary record. ID is assigned by the
	// store at creation and never changes. OwnerID, CreatedAt and
	// UpdatedAt are populated only by the server-side store.
	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		Date        time.Time `json:"date"`
		OwnerID     string    `json:"ownerId,omitempty"`
		CreatedAt   time.Time `json:"createdAt,omitempty"`
		UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	}

	// Draft is the caller-supplied input to Add: an expense without an
	// identity or bookkeeping fields.
	Draft struct {
		Amount      Money
		Description string
		Category    Category
		Date        time.Time
	}

	// Patch carries a partial update. Nil fields keep their prior value.
	Patch struct {
		Amount      *Money
		Description *string
		Category    *Category
		Date        *time.Time
	}
)

// Categories returns the fixed category set in catalog order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryTransport, CategoryShopping,
		CategoryEntertainment, CategoryHealth, CategoryBills, CategoryOther,
	}
}

func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category belongs to the fixed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping,
		CategoryEntertainment, CategoryHealth, CategoryBills, CategoryOther:
		return true
	default:
		return false
	}
}

// Validate checks the draft against the creation constraints: positive
// amount, non-empty trimmed description, known category, non-zero date.
func (d Draft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if !d.Category.IsValid() {
		return ErrInvalidCategory
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks only the fields the patch supplies, under the same
// constraints Add applies.
func (p Patch) Validate() error {
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if len(strings.TrimSpace(*p.Description)) == 0 {
			return ErrEmptyDescription
		}
		if len(*p.Description) > 200 {
			return ErrDescriptionTooLong
		}
	}
	if p.Category != nil && !p.Category.IsValid() {
		return ErrInvalidCategory
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty returns true when the patch supplies no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && p.Category == nil && p.Date == nil
}

// Apply returns a copy of e with the patch's supplied fields replaced.
// ID, OwnerID and CreatedAt are never touched.
func (p Patch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}
