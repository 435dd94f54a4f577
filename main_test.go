package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradie-match-server/models"
	"tradie-match-server/utils"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	flag := serve.Flags().Lookup("migrate")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestDemoProfilesAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range demoProfiles {
		assert.True(t, utils.IsValidEmail(p.email), p.email)
		assert.False(t, seen[p.email], "duplicate %s", p.email)
		seen[p.email] = true
		assert.GreaterOrEqual(t, p.age, 18)

		if p.role == models.RoleTradie {
			assert.True(t, models.IsKnownTrade(p.trade), p.trade)
			assert.Positive(t, p.hourlyRate)
		} else {
			assert.Empty(t, p.trade)
		}
	}
}
