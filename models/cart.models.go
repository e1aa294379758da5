package models

import (
	"errors"
	"strings"
)

var ErrInvalidQuantity = errors.New("quantity must not be negative")

// CartData maps a product id to quantities per size label.
type CartData map[string]map[string]int

// ValidSize reports whether size can be used as a document field name.
func ValidSize(size string) bool {
	return size != "" && !strings.Contains(size, ".") && !strings.HasPrefix(size, "$")
}

// Clean drops non-positive quantities and empty products.
func (c CartData) Clean() CartData {
	out := CartData{}
	for id, sizes := range c {
		for size, qty := range sizes {
			if qty <= 0 {
				continue
			}
			if out[id] == nil {
				out[id] = map[string]int{}
			}
			out[id][size] = qty
		}
	}
	return out
}
