package entities

import "strings"

// MaterialName identifies a material. It is the only identifier a material has;
// the same name may appear at several positions in the forest.
type MaterialName string

// NewMaterialName trims raw input and rejects empty names
func NewMaterialName(raw string) (MaterialName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", Validationf("material name cannot be empty")
	}
	return MaterialName(name), nil
}

// Quantity represents an integer per-unit or total quantity
type Quantity int64

// Validate checks that a per-unit quantity is usable as a multiplier
func (q Quantity) Validate() error {
	if q < 1 {
		return Validationf("quantity must be a positive integer, got %d", q)
	}
	return nil
}
