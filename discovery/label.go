package discovery

import (
	"fmt"
	"time"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
	"tradie-match-server/utils"
)

const labelCutoffKm = 9999

// DistanceLabel is the text shown on a profile tile.
func DistanceLabel(viewerID string, p *models.Profile, d float64) string {
	if p.ID == viewerID {
		return "You"
	}
	if p.HideDistance {
		if part := utils.FirstLocationPart(p.Location); part != "" {
			return part
		}
		return "Region"
	}
	switch {
	case d >= labelCutoffKm:
		return "Dist?"
	case d <= 0.1:
		return "<0.1 km"
	case d < 1:
		return fmt.Sprintf("%.0fm", d*1000)
	default:
		return fmt.Sprintf("%.1f km", d)
	}
}

// Tile is a ranked profile as sent to the feed.
type Tile struct {
	Profile       *models.Profile   `json:"profile"`
	DistanceLabel string            `json:"distance_label"`
	DistanceKm    *float64          `json:"distance_km,omitempty"`
	Unavailable   bool              `json:"unavailable_now"`
	NextAvailable *calendar.Opening `json:"next_available,omitempty"`
}

// Tiles labels ranked candidates. Other people's coordinates are never
// included, exact distances are withheld for profiles that hide them, and
// availability is only computed for tradespeople.
func Tiles(viewerID string, ranked []Candidate, now time.Time) []Tile {
	tiles := make([]Tile, 0, len(ranked))
	for _, c := range ranked {
		t := Tile{
			Profile:       publicProfile(viewerID, c.Profile),
			DistanceLabel: DistanceLabel(viewerID, c.Profile, c.DistanceKm),
		}
		if !c.Profile.HideDistance && utils.IsKnownDistance(c.DistanceKm) {
			d := c.DistanceKm
			t.DistanceKm = &d
		}
		if c.Profile.IsTradie() {
			t.Unavailable = calendar.IsUnavailableNow(c.Profile.Calendar, now)
			t.NextAvailable = calendar.NextAvailable(c.Profile.Calendar, now)
		}
		tiles = append(tiles, t)
	}
	return tiles
}

// publicProfile hides other people's coordinates. Only the label and, where
// allowed, the distance leave the server.
func publicProfile(viewerID string, p *models.Profile) *models.Profile {
	if p.ID == viewerID {
		return p
	}
	return p.Public()
}
