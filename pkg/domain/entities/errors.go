package entities

import "github.com/cockroachdb/errors"

var (
	// ErrValidation is returned when an insertion has an empty name or a quantity that is not a positive integer.
	ErrValidation = errors.New("validation error")
	// ErrParentNotFound is returned when the declared parent matches no node in the forest.
	ErrParentNotFound = errors.New("parent not found")
	// ErrEmptyTree is returned when aggregation or diagram generation runs on an empty forest.
	ErrEmptyTree = errors.New("no nodes in tree")
)

// Validationf builds an error that matches ErrValidation
func Validationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// ParentNotFound builds an error that matches ErrParentNotFound
func ParentNotFound(parent MaterialName) error {
	return errors.WithHint(
		errors.Wrapf(ErrParentNotFound, "material %q", parent),
		"add the parent material first, or leave the parent empty to create a new root",
	)
}

// EmptyTree builds an error that matches ErrEmptyTree
func EmptyTree(operation string) error {
	return errors.WithHint(
		errors.Wrapf(ErrEmptyTree, "cannot %s", operation),
		"add at least one root material",
	)
}
