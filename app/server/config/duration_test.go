package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationDecode(t *testing.T) {
	cases := map[string]time.Duration{
		"1d":    24 * time.Hour,
		"7d":    7 * 24 * time.Hour,
		"90m":   90 * time.Minute,
		" 2h ":  2 * time.Hour,
		"1h30m": 90 * time.Minute,
	}
	for in, want := range cases {
		var d Duration
		require.NoError(t, d.Decode(in), in)
		assert.Equal(t, want, d.Std(), in)
	}
}

func TestDurationDecodeRejects(t *testing.T) {
	for _, in := range []string{"", "d", "-1d", "0d", "abc", "-5m", "0s"} {
		var d Duration
		assert.Error(t, d.Decode(in), in)
	}
}
