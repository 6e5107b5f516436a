package order

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Unambiguous characters: no 0/O or 1/I.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderNumber returns "<prefix>-YYYYMMDD-XXXXXX" for the given day.
func NewOrderNumber(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, 6)
	base := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return prefix + "-" + now.Format("20060102") + "-" + string(suffix), nil
}
