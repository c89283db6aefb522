package services

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

func TestParseQuantity(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    entities.Quantity
		wantErr bool
	}{
		{"one", "1", 1, false},
		{"padded", " 3 ", 3, false},
		{"trailing zero fraction", "2.0", 2, false},
		{"exponent", "1e3", 1000, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"fraction", "2.5", 0, true},
		{"letters", "abc", 0, true},
		{"empty", "", 0, true},
		{"overflow", "99999999999999999999", 0, true},
		{"huge exponent", "1e20000000", 0, true},
		{"tiny exponent", "1e-20000000", 0, true},
		{"largest exponent", "1e18", 1000000000000000000, false},
		{"exponent past int64", "1e19", 0, true},
		{"too long", strings.Repeat("1", 100), 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQuantity(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, entities.ErrValidation), "got %v", err)
				assert.Less(t, len(err.Error()), 200, "error text must stay short")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInputValidator_Parse(t *testing.T) {
	v := NewInputValidator(false)

	ins, err := v.Parse(NodeInput{Name: " Wheel ", Parent: " Bike", Quantity: "2"})
	require.NoError(t, err)
	assert.Equal(t, Insertion{Name: "Wheel", Parent: "Bike", Quantity: 2}, ins)
	assert.False(t, ins.IsRoot())

	ins, err = v.Parse(NodeInput{Name: "Bike", Quantity: "1"})
	require.NoError(t, err)
	assert.True(t, ins.IsRoot())

	_, err = v.Parse(NodeInput{Name: "  ", Quantity: "1"})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	// Digits in names are fine unless letters-only mode is on
	_, err = v.Parse(NodeInput{Name: "M6 bolt", Quantity: "4"})
	assert.NoError(t, err)
}

func TestInputValidator_LettersOnly(t *testing.T) {
	v := NewInputValidator(true)

	_, err := v.Parse(NodeInput{Name: "Wheel", Parent: "Bike", Quantity: "2"})
	assert.NoError(t, err)

	_, err = v.Parse(NodeInput{Name: "M6bolt", Quantity: "4"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = v.Parse(NodeInput{Name: "Bolt", Parent: "Frame-2", Quantity: "4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent name")
}
