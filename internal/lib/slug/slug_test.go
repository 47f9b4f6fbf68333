package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Reset 7", want: "reset-7"},
		{name: "already slug", in: "reset-7", want: "reset-7"},
		{name: "accents", in: "Méditation guidée", want: "meditation-guidee"},
		{name: "punctuation collapsed", in: "Jour 3 : respiration !", want: "jour-3-respiration"},
		{name: "leading and trailing separators", in: "  --Hello--  ", want: "hello"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("reset-7"))
	assert.True(t, IsValid("respiration"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Reset-7"))
	assert.False(t, IsValid("reset 7"))
	assert.False(t, IsValid("reset-7-"))
}
