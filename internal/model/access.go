package model

// Feature slugs stored in member_access.feature.  One row exists per
// user/feature pair; the whole set is recomputed and replaced on login.
const (
	FeatureAcademy      = "academy"
	FeatureHidra        = "hidra"
	FeatureCybervault   = "cybervault"
	FeatureAdminConsole = "admin-console"
	FeatureCommunity    = "community"
)

// AccessEntry is one row of a member's access map: whether a feature is
// enabled for the member plus the permission strings granted inside it.
//
// Fields:
//
//	UserID      – owner of the entry.
//	Feature     – feature slug (see Feature* constants).
//	Enabled     – whether the feature is switched on for this member.
//	Permissions – granted permission strings within the feature.
type AccessEntry struct {
	UserID      string   // member_access.user_id
	Feature     string   // member_access.feature
	Enabled     bool     // member_access.enabled
	Permissions []string // member_access.permissions (comma separated column)
}

// AccessMapForRole computes the member-access map for a role.  The map is
// recomputed from scratch on every login so role changes take effect on
// the next sign-in without a migration.
func AccessMapForRole(userID, role string) []AccessEntry {
	entry := func(feature string, enabled bool, perms ...string) AccessEntry {
		return AccessEntry{UserID: userID, Feature: feature, Enabled: enabled, Permissions: perms}
	}
	switch role {
	case RoleAdmin, RoleSuperAdmin:
		return []AccessEntry{
			entry(FeatureAcademy, true, "courses:read", "courses:write", "progress:write"),
			entry(FeatureHidra, true, "campaigns:read", "campaigns:write", "config:write"),
			entry(FeatureCybervault, true, "resources:read", "resources:write"),
			entry(FeatureAdminConsole, true, "banners:write", "members:read", "moderation:write"),
			entry(FeatureCommunity, true, "comments:write", "comments:moderate"),
		}
	case RoleMentor:
		return []AccessEntry{
			entry(FeatureAcademy, true, "courses:read", "courses:write", "progress:write"),
			entry(FeatureHidra, true, "campaigns:read", "campaigns:write", "config:write"),
			entry(FeatureCybervault, true, "resources:read"),
			entry(FeatureAdminConsole, false),
			entry(FeatureCommunity, true, "comments:write"),
		}
	default: // MEMBER and anything unknown gets the baseline map
		return []AccessEntry{
			entry(FeatureAcademy, true, "courses:read", "progress:write"),
			entry(FeatureHidra, false),
			entry(FeatureCybervault, true, "resources:read"),
			entry(FeatureAdminConsole, false),
			entry(FeatureCommunity, true, "comments:write"),
		}
	}
}
