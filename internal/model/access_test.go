package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryFor(t *testing.T, entries []AccessEntry, feature string) AccessEntry {
	t.Helper()
	for _, e := range entries {
		if e.Feature == feature {
			return e
		}
	}
	t.Fatalf("no entry for feature %q", feature)
	return AccessEntry{}
}

func TestAccessMapForRole_member(t *testing.T) {
	entries := AccessMapForRole("u1", RoleMember)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "u1", e.UserID)
	}

	assert.True(t, entryFor(t, entries, FeatureAcademy).Enabled)
	assert.True(t, entryFor(t, entries, FeatureCybervault).Enabled)
	assert.True(t, entryFor(t, entries, FeatureCommunity).Enabled)
	// Hidra is present but off until an admin turns it on.
	assert.False(t, entryFor(t, entries, FeatureHidra).Enabled)
	assert.False(t, entryFor(t, entries, FeatureAdminConsole).Enabled)
}

func TestAccessMapForRole_admin(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleSuperAdmin} {
		entries := AccessMapForRole("u1", role)
		for _, e := range entries {
			assert.True(t, e.Enabled, "role %s feature %s", role, e.Feature)
		}
		assert.True(t, entryFor(t, entries, FeatureAdminConsole).Enabled)
	}
}

func TestAccessMapForRole_mentor(t *testing.T) {
	entries := AccessMapForRole("u1", RoleMentor)
	assert.True(t, entryFor(t, entries, FeatureHidra).Enabled)
	assert.False(t, entryFor(t, entries, FeatureAdminConsole).Enabled)
}
