package utils

import (
	"strings"

	"forever-ecommerce/models"

	"golang.org/x/text/unicode/norm"
)

// CleanText trims s, collapses inner whitespace and composes it to NFC.
// Letter case is left as submitted.
func CleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeAddress cleans the whitespace of every address field.
func NormalizeAddress(a models.Address) models.Address {
	return models.Address{
		FirstName: CleanText(a.FirstName),
		LastName:  CleanText(a.LastName),
		Street:    CleanText(a.Street),
		City:      CleanText(a.City),
		State:     CleanText(a.State),
		Zip:       CleanText(a.Zip),
		Country:   CleanText(a.Country),
	}
}
