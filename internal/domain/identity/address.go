package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

var postcodePattern = regexp.MustCompile(`^\d{4}$`)

// australianStates are the accepted state/territory abbreviations.
var australianStates = map[string]bool{
	"NSW": true, "VIC": true, "QLD": true, "WA": true,
	"SA": true, "TAS": true, "ACT": true, "NT": true,
}

// AddressFields holds the editable parts of a delivery address.
type AddressFields struct {
	Label        string
	Recipient    string
	Phone        string
	Line1        string
	Line2        string
	Suburb       string
	State        string
	Postcode     string
	Instructions string
}

// Address is a saved delivery address belonging to one user.
type Address struct {
	shared.BaseEntity
	UserID uuid.UUID
	AddressFields
	IsDefault bool
}

// NewAddress validates the fields and creates a non-default address.
func NewAddress(userID uuid.UUID, fields AddressFields) (*Address, error) {
	fields, err := normalizeAddress(fields)
	if err != nil {
		return nil, err
	}
	return &Address{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		AddressFields: fields,
	}, nil
}

// Update replaces the editable fields.
func (a *Address) Update(fields AddressFields) error {
	fields, err := normalizeAddress(fields)
	if err != nil {
		return err
	}
	a.AddressFields = fields
	a.Touch()
	return nil
}

// BelongsTo reports whether the address is owned by userID.
func (a *Address) BelongsTo(userID uuid.UUID) bool {
	return a.UserID == userID
}

// ValidPostcode reports whether s is a four-digit Australian postcode.
func ValidPostcode(s string) bool {
	return postcodePattern.MatchString(s)
}

func normalizeAddress(f AddressFields) (AddressFields, error) {
	f.Label = strings.TrimSpace(f.Label)
	f.Recipient = strings.TrimSpace(f.Recipient)
	f.Line1 = strings.TrimSpace(f.Line1)
	f.Line2 = strings.TrimSpace(f.Line2)
	f.Suburb = strings.TrimSpace(f.Suburb)
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
	f.Postcode = strings.TrimSpace(f.Postcode)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Instructions = strings.TrimSpace(f.Instructions)

	if f.Recipient == "" {
		return f, shared.NewDomainError("INVALID_ADDRESS", "Recipient name is required")
	}
	if f.Line1 == "" {
		return f, shared.NewDomainError("INVALID_ADDRESS", "Street address is required")
	}
	if f.Suburb == "" {
		return f, shared.NewDomainError("INVALID_ADDRESS", "Suburb is required")
	}
	if !australianStates[f.State] {
		return f, shared.NewDomainError("INVALID_ADDRESS", "State must be an Australian state or territory")
	}
	if !ValidPostcode(f.Postcode) {
		return f, shared.NewDomainError("INVALID_POSTCODE", "Postcode must be 4 digits")
	}
	if f.Label == "" {
		f.Label = "Home"
	}
	return f, nil
}
