package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending to processing", Pending, Processing, true},
		{"processing to ready", Processing, Ready, true},
		{"processing to failed", Processing, Failed, true},
		{"pending skips to ready", Pending, Ready, false},
		{"pending skips to failed", Pending, Failed, false},
		{"ready is terminal", Ready, Failed, false},
		{"failed is terminal", Failed, Ready, false},
		{"no going back", Processing, Pending, false},
		{"ready back to processing", Ready, Processing, false},
		{"unknown source", Status("BOGUS"), Processing, false},
		{"unknown target", Pending, Status("BOGUS"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, Pending.Terminal())
	assert.False(t, Processing.Terminal())
	assert.True(t, Ready.Terminal())
	assert.True(t, Failed.Terminal())
}

func TestStatusBeyond(t *testing.T) {
	assert.True(t, Ready.Beyond(Processing))
	assert.True(t, Failed.Beyond(Pending))
	assert.False(t, Processing.Beyond(Processing))
	assert.False(t, Pending.Beyond(Processing))

	// terminal states share a rank; neither is beyond the other
	assert.False(t, Ready.Beyond(Failed))
	assert.False(t, Failed.Beyond(Ready))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{Pending, Processing, Ready, Failed} {
		assert.True(t, s.Valid())
	}

	assert.False(t, Status("pending").Valid())
	assert.False(t, Status("").Valid())
}
