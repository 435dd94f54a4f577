// Package discovery decides who appears in the dating and hiring feeds and
// in what order.
package discovery

import (
	"sort"
	"strings"
	"time"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
	"tradie-match-server/utils"
)

type Mode string

const (
	ModeDating Mode = "dating"
	ModeHiring Mode = "hiring"
)

// Valid reports whether m is a known feed mode.
func (m Mode) Valid() bool {
	return m == ModeDating || m == ModeHiring
}

const (
	DefaultMaxDistanceKm = 100
	DefaultMinAge        = 18
	DefaultMaxAge        = 99
)

// Filters narrows a feed. Dating uses VerifiedOnly, Trade, MaxDistanceKm and
// the age range; hiring uses Trade and LocationQuery.
type Filters struct {
	VerifiedOnly  bool    `form:"verified"`
	Trade         string  `form:"trade"`
	MaxDistanceKm float64 `form:"distance"`
	MinAge        int     `form:"min_age"`
	MaxAge        int     `form:"max_age"`
	LocationQuery string  `form:"location"`
}

// DefaultFilters returns the filters a feed opens with.
func DefaultFilters() Filters {
	return Filters{
		MaxDistanceKm: DefaultMaxDistanceKm,
		MinAge:        DefaultMinAge,
		MaxAge:        DefaultMaxAge,
	}
}

// Candidate is a profile with its distance from the viewer. DistanceKm is
// utils.UnknownDistanceKm when either side has no coordinates.
type Candidate struct {
	Profile    *models.Profile
	DistanceKm float64
}

// Rank filters profiles for viewer and sorts them for mode. blocked holds the
// IDs viewer has blocked. The profiles slice is not modified.
func Rank(viewer *models.Profile, profiles []models.Profile, blocked map[string]bool, mode Mode, f Filters, now time.Time) []Candidate {
	located := viewer.Latitude != nil && viewer.Longitude != nil
	out := make([]Candidate, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		self := p.ID == viewer.ID
		if !visible(p, self, blocked, mode) {
			continue
		}
		d := utils.DistanceKmPtr(viewer.Latitude, viewer.Longitude, p.Latitude, p.Longitude)
		if self {
			d = 0
		}

		switch mode {
		case ModeDating:
			if !self && !matchesDating(p, d, located, f) {
				continue
			}
		case ModeHiring:
			if !matchesHiring(p, f, now) {
				continue
			}
		}
		out = append(out, Candidate{Profile: p, DistanceKm: d})
	}

	switch mode {
	case ModeDating:
		sort.SliceStable(out, func(i, j int) bool {
			iSelf, jSelf := out[i].Profile.ID == viewer.ID, out[j].Profile.ID == viewer.ID
			if iSelf != jSelf {
				return iSelf
			}
			return out[i].DistanceKm < out[j].DistanceKm
		})
	case ModeHiring:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Profile.Verified != out[j].Profile.Verified {
				return out[i].Profile.Verified
			}
			return out[i].DistanceKm < out[j].DistanceKm
		})
	}
	return out
}

// visible applies the rules shared by both feeds.
func visible(p *models.Profile, self bool, blocked map[string]bool, mode Mode) bool {
	if blocked[p.ID] {
		return false
	}
	if self {
		return mode == ModeDating
	}
	if p.Deleted || p.Incognito || p.Role == models.RoleAdmin {
		return false
	}
	if mode == ModeDating && p.JobOnlyVisibility {
		return false
	}
	if mode == ModeHiring && !p.IsTradie() {
		return false
	}
	return true
}

// matchesDating applies the dating filters. A profile without a known
// distance fails any radius unless the viewer has no location either.
func matchesDating(p *models.Profile, d float64, viewerLocated bool, f Filters) bool {
	if f.VerifiedOnly && !p.Verified {
		return false
	}
	if f.Trade != "" && p.Trade != f.Trade {
		return false
	}
	if f.MinAge > 0 && p.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && p.Age > f.MaxAge {
		return false
	}
	if f.MaxDistanceKm > 0 && viewerLocated {
		if !utils.IsKnownDistance(d) || d > f.MaxDistanceKm {
			return false
		}
	}
	return true
}

func matchesHiring(p *models.Profile, f Filters, now time.Time) bool {
	if f.Trade != "" && p.Trade != f.Trade {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.LocationQuery)); q != "" {
		if !strings.Contains(strings.ToLower(p.Location), q) {
			return false
		}
	}
	return !calendar.IsUnavailableForHire(p.Calendar, now)
}
