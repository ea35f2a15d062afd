package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// couponAlphabet leaves out characters that are easy to misread (0/O, 1/I).
const couponAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCouponCode generates a random coupon code with the given prefix.
// Format: PREFIX-XXXXXXXX
// Example: SALE-7KQ2M9XD
func GenerateCouponCode(prefix string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = couponAlphabet[int(b[i])%len(couponAlphabet)]
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return string(b), nil
	}
	return fmt.Sprintf("%s-%s", prefix, b), nil
}
