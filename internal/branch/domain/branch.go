package domain

import (
	"errors"
	"time"
)

// Branch is a rental office location.
type Branch struct {
	ID        string
	Name      string
	Address   Address
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt *time.Time
	UpdatedBy *string
	DeletedAt *time.Time
	DeletedBy *string
}

// Address is the branch location value object.
type Address struct {
	City        string `json:"city"`
	District    string `json:"district"`
	FullAddress string `json:"fullAddress"`
	Phone1      string `json:"phone1"`
	Phone2      string `json:"phone2,omitempty"`
}

// Detail is a branch joined with the display names of the users who created
// and last updated it, for listing screens.
type Detail struct {
	Branch
	CreatedByName string
	UpdatedByName string
}

// Validate validates the branch for persistence.
func (b *Branch) Validate() error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	if b.Address.City == "" {
		return errors.New("address city is required")
	}
	if b.Address.FullAddress == "" {
		return errors.New("address is required")
	}
	if b.Address.Phone1 == "" {
		return errors.New("primary phone is required")
	}
	return nil
}

// Stamp records an update by the given actor at the given time.
func (b *Branch) Stamp(actorID string, at time.Time) {
	b.UpdatedAt = &at
	b.UpdatedBy = &actorID
}
