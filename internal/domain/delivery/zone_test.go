package delivery

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func westernSydney(t *testing.T) *Zone {
	t.Helper()
	threshold := dec("100")
	z, err := NewZone(ZoneTerms{
		Name:                  "Western Sydney",
		Postcodes:             []string{"2150", " 2145", "2150", "2148"},
		DeliveryFee:           dec("9.95"),
		FreeDeliveryThreshold: &threshold,
		MinOrderAmount:        dec("40"),
		EstimatedDays:         "1-2",
	})
	require.NoError(t, err)
	return z
}

func TestNewZone(t *testing.T) {
	z := westernSydney(t)
	assert.Equal(t, []string{"2145", "2148", "2150"}, z.Postcodes)
	assert.True(t, z.Covers("2148"))
	assert.False(t, z.Covers("3000"))

	_, err := NewZone(ZoneTerms{Name: "Bad", Postcodes: []string{"21500"}})
	assert.True(t, shared.HasCode(err, "INVALID_POSTCODES"))

	_, err = NewZone(ZoneTerms{Name: "Empty"})
	assert.True(t, shared.HasCode(err, "INVALID_POSTCODES"))

	_, err = NewZone(ZoneTerms{Name: "Neg", Postcodes: []string{"2000"}, DeliveryFee: dec("-1")})
	assert.True(t, shared.HasCode(err, "INVALID_FEE"))
}

func TestZone_FeeFor(t *testing.T) {
	z := westernSydney(t)

	assert.Equal(t, "9.95", z.FeeFor(dec("99.99")).StringFixed(2))
	assert.True(t, z.FeeFor(dec("100")).IsZero(), "threshold is inclusive")
	assert.True(t, z.FeeFor(dec("180")).IsZero())

	assert.Equal(t, "20.01", z.FreeDeliveryRemaining(dec("79.99")).StringFixed(2))
	assert.True(t, z.FreeDeliveryRemaining(dec("150")).IsZero())

	z.FreeDeliveryThreshold = nil
	assert.Equal(t, "9.95", z.FeeFor(dec("1000")).StringFixed(2))
	assert.Nil(t, z.FreeDeliveryRemaining(dec("10")))
}

func TestZone_MinimumAndOverlap(t *testing.T) {
	z := westernSydney(t)
	assert.False(t, z.MeetsMinimum(dec("39.99")))
	assert.True(t, z.MeetsMinimum(dec("40")))

	other, err := NewZone(ZoneTerms{Name: "Hills", Postcodes: []string{"2153", "2148"}, DeliveryFee: dec("12")})
	require.NoError(t, err)
	assert.Equal(t, []string{"2148"}, z.Overlaps(other))
}

func TestNewProofOfDelivery(t *testing.T) {
	orderID, driverID := uuid.New(), uuid.New()

	pod, err := NewProofOfDelivery(orderID, driverID, " Chipo ", "", "pod/photo.jpg", "left with neighbour")
	require.NoError(t, err)
	assert.Equal(t, "Chipo", pod.RecipientName)
	assert.False(t, pod.DeliveredAt.IsZero())

	_, err = NewProofOfDelivery(orderID, driverID, "", "sig.png", "", "")
	assert.True(t, shared.HasCode(err, "INVALID_POD"))

	_, err = NewProofOfDelivery(orderID, driverID, "Chipo", " ", "", "")
	assert.True(t, shared.HasCode(err, "INVALID_POD"))
}
