package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"serve", "ingest", "plans", "recommend"}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}
}

func TestRecommendFlags(t *testing.T) {
	for _, flag := range []string{"age", "sum-assured", "budget", "term", "min-csr"} {
		assert.NotNil(t, recommendCmd.Flags().Lookup(flag), flag)
	}
}
