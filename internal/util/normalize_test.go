package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Demo@AICE.io", "demo@aice.io"},
		{"trims whitespace", "  demo@aice.io \n", "demo@aice.io"},
		{"already canonical", "demo@aice.io", "demo@aice.io"},
		{"fullwidth compatibility form", "ｄemo@aice.io", "demo@aice.io"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.input))
		})
	}
}
