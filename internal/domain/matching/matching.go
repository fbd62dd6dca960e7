// Package matching scores traveler/listing compatibility for search ranking.
// Score and Rank are pure: no I/O, no clock, so identical inputs always
// yield identical results.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"staywise/internal/domain/listings"
	"staywise/internal/domain/traveler"
)

// Factor weights. They sum to 100; the total is capped there as well
// because the wifi bonus can push the work factor past its base weight.
const (
	weightIntent    = 25.0
	weightVibes     = 20.0
	weightWork      = 15.0
	weightAmenities = 20.0
	weightBudget    = 10.0
	weightType      = 10.0

	intentWorkFallback = 20.0
	wifiBonus          = 5.0
	fastWifiMbps       = 50

	fallbackScore = 85.0
)

const intentRemoteWork = "remote_work"

type Match struct {
	Score   float64
	Reasons []string
}

// Ranked pairs a listing with its match result, preserving the listing for
// response shaping.
type Ranked struct {
	Listing *listings.Listing
	Score   float64
	Reasons []string
}

// Score rates how well a listing fits a traveler profile on a 0-100 scale.
// An absent or empty profile gets the popular-choice fallback.
func Score(profile *traveler.Profile, l *listings.Listing) Match {
	if emptyProfile(profile) {
		return Match{Score: fallbackScore, Reasons: []string{"Popular choice"}}
	}

	var score float64
	var reasons []string

	// Intent match wins over the work-friendly fallback; the two are
	// mutually exclusive.
	switch {
	case containsFold(l.IdealFor, profile.TravelIntent):
		score += weightIntent
		reasons = append(reasons, "Ideal for "+strings.ReplaceAll(profile.TravelIntent, "_", " "))
	case profile.TravelIntent == intentRemoteWork && l.WorkFriendly:
		score += intentWorkFallback
		reasons = append(reasons, "Set up for working remotely")
	}

	if len(profile.PreferredVibes) > 0 {
		overlap := overlapCount(profile.PreferredVibes, l.Vibes)
		if overlap > 0 {
			pts := weightVibes * float64(overlap) / float64(len(profile.PreferredVibes))
			if pts > weightVibes {
				pts = weightVibes
			}
			score += pts
			reasons = append(reasons, fmt.Sprintf("Matches %d of your preferred vibes", overlap))
		}
	}

	score += workFit(profile, l, &reasons)

	if len(profile.MustHaveAmenities) > 0 {
		matched := 0
		for _, want := range profile.MustHaveAmenities {
			if substringMatch(l.Amenities, want) {
				matched++
			}
		}
		if matched > 0 {
			score += weightAmenities * float64(matched) / float64(len(profile.MustHaveAmenities))
			if matched == len(profile.MustHaveAmenities) {
				reasons = append(reasons, "Has all your must-have amenities")
			} else {
				reasons = append(reasons, fmt.Sprintf("Has %d of %d must-have amenities", matched, len(profile.MustHaveAmenities)))
			}
		}
	}

	if budgetFits(profile.BudgetRange, l) {
		score += weightBudget
		reasons = append(reasons, "Fits your budget")
	}

	if typeFits(profile.PreferredTypes, l.PropertyType) {
		score += weightType
		reasons = append(reasons, "Your kind of place")
	}

	if score > 100 {
		score = 100
	}
	return Match{Score: score, Reasons: reasons}
}

// Rank orders listings by score descending. Ties keep their input order so
// repeated searches stay stable.
func Rank(profile *traveler.Profile, ls []*listings.Listing) []Ranked {
	ranked := make([]Ranked, 0, len(ls))
	for _, l := range ls {
		m := Score(profile, l)
		ranked = append(ranked, Ranked{Listing: l, Score: m.Score, Reasons: m.Reasons})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// workFit only meaningfully scores remote-work travelers; everyone else
// gets the full weight as not-applicable.
func workFit(profile *traveler.Profile, l *listings.Listing, reasons *[]string) float64 {
	if profile.TravelIntent != intentRemoteWork {
		return weightWork
	}
	var pts float64
	if len(profile.WorkNeeds) > 0 {
		overlap := overlapCount(profile.WorkNeeds, l.WorkAmenities)
		if overlap > 0 {
			pts = weightWork * float64(overlap) / float64(len(profile.WorkNeeds))
			if pts > weightWork {
				pts = weightWork
			}
			*reasons = append(*reasons, "Has your work essentials")
		}
	}
	if containsFold(profile.WorkNeeds, "fast_wifi") && l.WifiSpeedMbps != nil && *l.WifiSpeedMbps >= fastWifiMbps {
		pts += wifiBonus
		*reasons = append(*reasons, fmt.Sprintf("Fast wifi (%d+ Mbps)", fastWifiMbps))
	}
	return pts
}

func budgetFits(budgetRange string, l *listings.Listing) bool {
	price := float64(l.NightlyPrice().Amount) / 100
	switch strings.ToLower(strings.TrimSpace(budgetRange)) {
	case "budget":
		return price < 100
	case "moderate":
		return price >= 100 && price <= 250
	case "luxury":
		return price > 250
	default:
		return false
	}
}

func typeFits(preferred []string, propertyType string) bool {
	pt := strings.ToLower(propertyType)
	if pt == "" {
		return false
	}
	for _, want := range preferred {
		want = strings.ToLower(strings.TrimSpace(want))
		if want != "" && strings.Contains(pt, want) {
			return true
		}
	}
	return false
}

func emptyProfile(p *traveler.Profile) bool {
	if p == nil {
		return true
	}
	return p.TravelIntent == "" &&
		len(p.PreferredVibes) == 0 &&
		len(p.WorkNeeds) == 0 &&
		len(p.MustHaveAmenities) == 0 &&
		p.BudgetRange == "" &&
		len(p.PreferredTypes) == 0
}

func overlapCount(wanted, have []string) int {
	index := make(map[string]struct{}, len(have))
	for _, v := range have {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			index[v] = struct{}{}
		}
	}
	count := 0
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := index[w]; ok {
			count++
		}
	}
	return count
}

func substringMatch(values []string, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return false
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), needle) {
			return true
		}
	}
	return false
}
