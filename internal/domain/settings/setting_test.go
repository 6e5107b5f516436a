package settings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func TestSetting_SetValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     ValueType
		raw     any
		want    string
		wantErr bool
	}{
		{name: "string trimmed", typ: TypeString, raw: "  Zambezi Meats ", want: "Zambezi Meats"},
		{name: "string rejects number", typ: TypeString, raw: 12.0, wantErr: true},
		{name: "number from float", typ: TypeNumber, raw: 10.5, want: "10.5"},
		{name: "number from string", typ: TypeNumber, raw: "50", want: "50"},
		{name: "number rejects text", typ: TypeNumber, raw: "fifty", wantErr: true},
		{name: "boolean", typ: TypeBoolean, raw: true, want: "true"},
		{name: "boolean from string", typ: TypeBoolean, raw: "false", want: "false"},
		{name: "boolean rejects number", typ: TypeBoolean, raw: 1.0, wantErr: true},
		{name: "json object", typ: TypeJSON, raw: map[string]any{"mon": "8-17"}, want: `{"mon":"8-17"}`},
		{name: "json string must parse", typ: TypeJSON, raw: "{broken", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Setting{Key: "k", Type: tt.typ}
			err := s.SetValue(tt.raw)
			if tt.wantErr {
				assert.True(t, shared.HasCode(err, "INVALID_SETTING_VALUE"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Value)
		})
	}
}

func TestValues_Accessors(t *testing.T) {
	v := NewValues([]Setting{
		{Key: KeyTaxRate, Value: "10", Type: TypeNumber, IsPublic: true},
		{Key: KeyCODEnabled, Value: "true", Type: TypeBoolean},
		{Key: KeyStoreName, Value: "Zambezi", Type: TypeString, IsPublic: true},
		{Key: "business_hours", Value: `{"mon":"8-17"}`, Type: TypeJSON, IsPublic: true},
	})

	assert.Equal(t, "10", v.Decimal(KeyTaxRate, decimal.Zero).String())
	assert.Equal(t, "50", v.Decimal(KeyMinOrderAmount, decimal.NewFromInt(50)).String())
	assert.Equal(t, 10, v.Int(KeyTaxRate, 0))
	assert.True(t, v.Bool(KeyCODEnabled, false))
	assert.Equal(t, "Zambezi", v.String(KeyStoreName, ""))

	public := v.Public()
	assert.Len(t, public, 3)
	assert.Equal(t, 10.0, public[KeyTaxRate])
	assert.Equal(t, map[string]any{"mon": "8-17"}, public["business_hours"])
}
