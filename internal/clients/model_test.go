package clients

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasVAT(t *testing.T) {
	liable := []string{
		"UAE",
		"uae",
		"United Arab Emirates",
		"Dubai, U.A.E emirates",
		"EMIRATES",
	}
	for _, country := range liable {
		require.True(t, HasVAT(country), country)
	}

	exempt := []string{
		"",
		"Singapore",
		"United Kingdom",
		"Uruguay",
	}
	for _, country := range exempt {
		require.False(t, HasVAT(country), country)
	}
}
