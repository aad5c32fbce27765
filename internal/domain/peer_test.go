package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClampUsername(t *testing.T) {
	assert.Equal(t, "alice", ClampUsername("alice"))
	assert.Equal(t, "", ClampUsername(""))

	long := strings.Repeat("x", MaxUsernameLen+10)
	assert.Equal(t, strings.Repeat("x", MaxUsernameLen), ClampUsername(long))
}

func TestClampUsername_MultibyteStaysValidUTF8(t *testing.T) {
	wide := strings.Repeat("ü", MaxUsernameLen+5)

	got := ClampUsername(wide)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxUsernameLen, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("ü", MaxUsernameLen), got)
}

func TestNewParticipantID(t *testing.T) {
	a, b := NewParticipantID(), NewParticipantID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
