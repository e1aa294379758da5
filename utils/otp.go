package utils

import (
	"crypto/rand"
	"math/big"
)

const OTPLength = 6

// GenerateOTP returns a numeric code of OTPLength digits drawn uniformly.
func GenerateOTP() (string, error) {
	buf := make([]byte, OTPLength)
	ten := big.NewInt(10)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
