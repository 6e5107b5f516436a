package settings

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ValueType is the declared type of a setting value.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeJSON    ValueType = "json"
)

// Group buckets settings for the admin screen.
type Group string

const (
	GroupGeneral  Group = "general"
	GroupStore    Group = "store"
	GroupDelivery Group = "delivery"
	GroupPayment  Group = "payment"
	GroupOrders   Group = "orders"
)

// Well-known keys read by the services.
const (
	KeyStoreName               = "store_name"
	KeyStoreEmail              = "store_email"
	KeyCurrency                = "currency"
	KeyTaxRate                 = "tax_rate"
	KeyMinOrderAmount          = "min_order_amount"
	KeyCancellationWindowHours = "order_cancellation_window_hours"
	KeyLowStockNotifications   = "low_stock_notifications"
	KeyOrderNumberPrefix       = "order_number_prefix"
	KeyCODEnabled              = "cod_enabled"
)

const maxStringLength = 2000

// Setting is one typed configuration value managed by admins.
type Setting struct {
	Key         string    `gorm:"type:varchar(100);primaryKey"`
	Value       string    `gorm:"type:text;not null"`
	Type        ValueType `gorm:"type:varchar(10);not null"`
	Group       Group     `gorm:"column:setting_group;type:varchar(20);not null;index"`
	IsPublic    bool      `gorm:"not null;default:false"`
	Description string    `gorm:"type:varchar(500)"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// SetValue validates raw against the setting's type and stores its
// canonical string form.
func (s *Setting) SetValue(raw any) error {
	v, err := canonical(s.Type, raw)
	if err != nil {
		return shared.NewDomainError("INVALID_SETTING_VALUE", s.Key+": "+err.Error())
	}
	s.Value = v
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Typed returns the value decoded into its JSON-native form.
func (s Setting) Typed() any {
	switch s.Type {
	case TypeNumber:
		if d, err := decimal.NewFromString(s.Value); err == nil {
			f, _ := d.Float64()
			return f
		}
	case TypeBoolean:
		b, _ := strconv.ParseBool(s.Value)
		return b
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(s.Value), &v); err == nil {
			return v
		}
	}
	return s.Value
}

func canonical(t ValueType, raw any) (string, error) {
	switch t {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return "", errors.New("must be a string")
		}
		s = strings.TrimSpace(s)
		if len(s) > maxStringLength {
			return "", errors.New("is too long")
		}
		return s, nil
	case TypeNumber:
		var d decimal.Decimal
		var err error
		switch v := raw.(type) {
		case float64:
			d = decimal.NewFromFloat(v)
		case int:
			d = decimal.NewFromInt(int64(v))
		case json.Number:
			d, err = decimal.NewFromString(v.String())
		case string:
			d, err = decimal.NewFromString(strings.TrimSpace(v))
		default:
			return "", errors.New("must be a number")
		}
		if err != nil {
			return "", errors.New("must be a number")
		}
		return d.String(), nil
	case TypeBoolean:
		switch v := raw.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return "", errors.New("must be a boolean")
			}
			return strconv.FormatBool(b), nil
		}
		return "", errors.New("must be a boolean")
	case TypeJSON:
		if s, ok := raw.(string); ok {
			if !json.Valid([]byte(s)) {
				return "", errors.New("must be valid JSON")
			}
			return s, nil
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return "", errors.New("must be valid JSON")
		}
		return string(b), nil
	}
	return "", errors.New("has an unknown type")
}
