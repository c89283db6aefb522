package logger

import (
	"bytes"
	"testing"

	charm "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		raw     string
		want    charm.Level
		wantErr bool
	}{
		{"", charm.InfoLevel, false},
		{"debug", charm.DebugLevel, false},
		{"WARN", charm.WarnLevel, false},
		{" error ", charm.ErrorLevel, false},
		{"chatty", charm.InfoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseLevel(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConfigure(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "warn"))

	Info("hidden", "material", "Wheel")
	Warn("shown", "material", "Spoke")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "material=Spoke")

	assert.Error(t, Configure(&buf, "loud"))
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	original := Default()
	SetDefault(nil)
	assert.Same(t, original, Default())
}
