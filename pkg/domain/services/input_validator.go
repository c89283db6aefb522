package services

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

var lettersOnly = regexp.MustCompile(`^[a-zA-Z]*$`)

// NodeInput carries the raw values of the name, parent and quantity fields
type NodeInput struct {
	Name     string `json:"name"`
	Parent   string `json:"parent"`
	Quantity string `json:"quantity"`
}

// Insertion is a NodeInput that passed validation
type Insertion struct {
	Name     entities.MaterialName
	Parent   entities.MaterialName
	Quantity entities.Quantity
}

// IsRoot reports whether the insertion creates a new root
func (i Insertion) IsRoot() bool {
	return i.Parent == ""
}

// InputValidator converts raw field values into insertions
type InputValidator struct {
	lettersOnly bool
}

// NewInputValidator creates a validator. With lettersOnly set, names and parents
// may only contain ASCII letters.
func NewInputValidator(lettersOnly bool) *InputValidator {
	return &InputValidator{lettersOnly: lettersOnly}
}

// Parse validates raw input. Every failure matches entities.ErrValidation.
func (v *InputValidator) Parse(input NodeInput) (Insertion, error) {
	name, err := entities.NewMaterialName(input.Name)
	if err != nil {
		return Insertion{}, err
	}
	parent := entities.MaterialName(strings.TrimSpace(input.Parent))

	if v.lettersOnly {
		if !lettersOnly.MatchString(string(name)) {
			return Insertion{}, entities.Validationf("material name %q may only contain letters", name)
		}
		if !lettersOnly.MatchString(string(parent)) {
			return Insertion{}, entities.Validationf("parent name %q may only contain letters", parent)
		}
	}

	qty, err := ParseQuantity(input.Quantity)
	if err != nil {
		return Insertion{}, err
	}

	return Insertion{Name: name, Parent: parent, Quantity: qty}, nil
}

// Bounds on raw quantity input. Any positive int64 fits in 19 digits, and
// decimal expands the full value for large exponents.
const (
	maxQuantityInputLen = 64
	maxQuantityExponent = 18
	quantityEchoLen     = 24
)

// ParseQuantity parses a positive integer quantity. Fractional values such as
// "2.5" are rejected, "2.0" is accepted.
func ParseQuantity(raw string) (entities.Quantity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, entities.Validationf("quantity is required")
	}
	if len(raw) > maxQuantityInputLen {
		return 0, entities.Validationf("quantity %q is too long", echo(raw))
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, entities.Validationf("quantity %q is not a number", echo(raw))
	}
	if exp := d.Exponent(); exp > maxQuantityExponent || exp < -maxQuantityExponent {
		return 0, entities.Validationf("quantity %q is out of range", echo(raw))
	}
	if !d.IsInteger() {
		return 0, entities.Validationf("quantity %q must be a whole number", echo(raw))
	}
	if !d.BigInt().IsInt64() {
		return 0, entities.Validationf("quantity %q is out of range", echo(raw))
	}

	qty := entities.Quantity(d.IntPart())
	if err := qty.Validate(); err != nil {
		return 0, err
	}
	return qty, nil
}

// echo shortens raw input for error messages
func echo(raw string) string {
	if len(raw) <= quantityEchoLen {
		return raw
	}
	return raw[:quantityEchoLen] + "..."
}
