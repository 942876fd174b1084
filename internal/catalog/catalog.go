// Package catalog defines the subscription plan catalogue and the closed
// tier/level enumerations shared by the access-control engine.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrPlanNotFound = errors.New("catalog: plan not found")
)

// Tier identifies a user's purchased capability bucket.
type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Level classifies a piece of content's gating requirement.
type Level string

const (
	LevelPublic     Level = "public"
	LevelRegistered Level = "registered"
	LevelPremium    Level = "premium"
	LevelEnterprise Level = "enterprise"
	LevelRestricted Level = "restricted"
)

// ValueTier classifies assessed content value.
type ValueTier string

const (
	ValueBasic     ValueTier = "basic"
	ValueStandard  ValueTier = "standard"
	ValuePremium   ValueTier = "premium"
	ValueExclusive ValueTier = "exclusive"
)

// TierLevels is the canonical tier → allowed content levels table.
// Access nesting is expressed here explicitly, never derived from
// string ordering.
var TierLevels = map[Tier][]Level{
	TierFree:       {LevelPublic},
	TierPremium:    {LevelPublic, LevelRegistered, LevelPremium},
	TierEnterprise: {LevelPublic, LevelRegistered, LevelPremium, LevelEnterprise},
}

// LevelTier is the canonical content level → minimum tier table.
var LevelTier = map[Level]Tier{
	LevelPublic:     TierFree,
	LevelRegistered: TierPremium,
	LevelPremium:    TierPremium,
	LevelEnterprise: TierEnterprise,
	LevelRestricted: TierEnterprise,
}

// TierHasLevel reports whether a subscription tier includes a content level.
func TierHasLevel(tier Tier, level Level) bool {
	for _, l := range TierLevels[tier] {
		if l == level {
			return true
		}
	}
	return false
}

// RequiredTier returns the minimum tier for a content level.
// Unknown levels resolve to premium.
func RequiredTier(level Level) Tier {
	if t, ok := LevelTier[level]; ok {
		return t
	}
	return TierPremium
}

// ValidTier returns true if the tier name is recognised.
func ValidTier(t Tier) bool {
	switch t {
	case TierFree, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// ValidLevel returns true if the level name is recognised.
func ValidLevel(l Level) bool {
	switch l {
	case LevelPublic, LevelRegistered, LevelPremium, LevelEnterprise, LevelRestricted:
		return true
	}
	return false
}

// ParseLevel parses a level string case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !ValidLevel(l) {
		return "", fmt.Errorf("invalid access level %q: must be one of public, registered, premium, enterprise, restricted", s)
	}
	return l, nil
}

// ParseTier parses a tier string case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !ValidTier(t) {
		return "", fmt.Errorf("invalid subscription tier %q: must be one of free, premium, enterprise", s)
	}
	return t, nil
}
