// Package pricing computes dynamic price suggestions for hosts. Every
// function here is pure: callers pass the listing, its bookings and the
// clock, so identical inputs always produce identical suggestions.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"staywise/internal/domain/booking"
	"staywise/internal/domain/listings"
	"staywise/internal/domain/shared/money"
)

// Factors are the raw signals a suggestion is composed from.
type Factors struct {
	DemandScore         int     `json:"demandScore"`
	SeasonalMultiplier  float64 `json:"seasonalMultiplier"`
	DayOfWeekMultiplier float64 `json:"dayOfWeekMultiplier"`
	OccupancyRate       float64 `json:"occupancyRate"`
}

// RevenueProjection estimates 30-day revenue at the current vs suggested
// price, in major currency units. The suggested side carries a 5% discount
// modeling lower conversion at a higher price.
type RevenueProjection struct {
	WithCurrentPrice   float64 `json:"withCurrentPrice"`
	WithSuggestedPrice float64 `json:"withSuggestedPrice"`
}

type Suggestion struct {
	SuggestedPrice money.Money
	CurrentPrice   money.Money
	BasePrice      money.Money
	Factors        Factors
	Explanations   []string
	Projection     RevenueProjection
}

const occupancyWindowDays = 30

// DemandScoreFor maps the count of confirmed/completed bookings from the
// trailing 30 days onto a 0-100 step scale.
func DemandScoreFor(recentBookings int) int {
	switch {
	case recentBookings == 0:
		return 30
	case recentBookings <= 2:
		return 50
	case recentBookings <= 5:
		return 70
	default:
		score := 70 + 3*recentBookings
		if score > 95 {
			score = 95
		}
		return score
	}
}

// RecentBookingCount counts confirmed or completed bookings created within
// the trailing 30 days.
func RecentBookingCount(bookings []*booking.Booking, now time.Time) int {
	since := now.UTC().AddDate(0, 0, -30)
	count := 0
	for _, b := range bookings {
		if b.State != booking.StateConfirmed && b.State != booking.StateCompleted {
			continue
		}
		if b.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count
}

var (
	beachWords    = []string{"beach", "coast", "coastal", "bay", "island", "shore", "ocean", "sea"}
	mountainWords = []string{"mountain", "ski", "alpine", "alps", "aspen", "tahoe", "summit", "highlands"}
)

// SeasonalMultiplier keyword-matches the listing location against beach and
// mountain vocabularies and combines it with the calendar month. Generic
// fallbacks apply when no keyword matches.
func SeasonalMultiplier(location string, month time.Month) float64 {
	loc := strings.ToLower(location)
	summer := month >= time.June && month <= time.August

	if containsAny(loc, beachWords) {
		switch {
		case summer:
			return 1.4
		case month == time.December || month == time.January || month == time.February:
			return 0.9
		default:
			return 1.05
		}
	}
	if containsAny(loc, mountainWords) {
		switch {
		case month == time.December || month <= time.March:
			return 1.5
		case summer:
			return 1.2
		default:
			return 0.95
		}
	}
	switch {
	case summer:
		return 1.15
	case month == time.December:
		return 1.2
	case month == time.March:
		return 1.1
	default:
		return 0.9
	}
}

// DayOfWeekMultiplier prices weekends up. Evaluated against today rather
// than the stay dates: the suggestion models "price if booked right now".
func DayOfWeekMultiplier(day time.Weekday) float64 {
	switch day {
	case time.Friday, time.Saturday:
		return 1.15
	case time.Sunday:
		return 1.05
	default:
		return 1.0
	}
}

// OccupancyRate sums the nights of pending/confirmed bookings overlapping
// the next 30-day window, divided by 30 and capped at 1.0. Bookings are not
// clipped to the window, which can overstate occupancy for long stays.
func OccupancyRate(bookings []*booking.Booking, now time.Time) float64 {
	windowStart := now.UTC()
	windowEnd := windowStart.AddDate(0, 0, occupancyWindowDays)
	nights := 0
	for _, b := range bookings {
		if !b.State.Active() {
			continue
		}
		if b.Range.CheckIn.Before(windowEnd) && b.Range.CheckOut.After(windowStart) {
			nights += b.Range.Nights()
		}
	}
	rate := float64(nights) / float64(occupancyWindowDays)
	if rate > 1.0 {
		rate = 1.0
	}
	return rate
}

// ComputeFactors derives all suggestion inputs for a listing at the given
// instant.
func ComputeFactors(l *listings.Listing, bookings []*booking.Booking, now time.Time) Factors {
	now = now.UTC()
	return Factors{
		DemandScore:         DemandScoreFor(RecentBookingCount(bookings, now)),
		SeasonalMultiplier:  SeasonalMultiplier(l.Location, now.Month()),
		DayOfWeekMultiplier: DayOfWeekMultiplier(now.Weekday()),
		OccupancyRate:       OccupancyRate(bookings, now),
	}
}

// Suggest composes the factors into a suggested nightly price. Steps apply
// in a fixed order, each multiplying the running price and emitting an
// explanation when it crosses its significance threshold. The result is
// rounded to the nearest whole currency unit.
func Suggest(l *listings.Listing, f Factors) Suggestion {
	price := float64(l.BasePrice.Amount) / 100
	var explanations []string

	demandMult := 1 + (float64(f.DemandScore-50)/100)*0.3
	price *= demandMult
	if delta := demandMult - 1; delta > 0.05 {
		explanations = append(explanations, fmt.Sprintf("High demand in your area (+%d%%)", int(math.Round(delta*100))))
	} else if delta < -0.05 {
		explanations = append(explanations, fmt.Sprintf("Low demand in your area (%d%%)", int(math.Round(delta*100))))
	}

	price *= f.SeasonalMultiplier
	if f.SeasonalMultiplier > 1.1 {
		explanations = append(explanations, "Peak season rates for your location")
	} else if f.SeasonalMultiplier < 0.95 {
		explanations = append(explanations, "Off-season discount applied")
	}

	price *= f.DayOfWeekMultiplier
	if f.DayOfWeekMultiplier > 1.05 {
		explanations = append(explanations, "Weekend premium")
	}

	switch {
	case f.OccupancyRate < 0.3:
		price *= 0.9
		explanations = append(explanations, "Low occupancy discount to attract bookings")
	case f.OccupancyRate > 0.8:
		price *= 1.1
		explanations = append(explanations, "High occupancy premium")
	}

	suggested := money.FromMajorUnits(int64(math.Round(price)), l.BasePrice.Currency)
	current := l.NightlyPrice()

	return Suggestion{
		SuggestedPrice: suggested,
		CurrentPrice:   current,
		BasePrice:      l.BasePrice,
		Factors:        f,
		Explanations:   explanations,
		Projection:     projectRevenue(current, suggested, f.OccupancyRate),
	}
}

func projectRevenue(current, suggested money.Money, occupancy float64) RevenueProjection {
	vacancy := 1 - occupancy
	return RevenueProjection{
		WithCurrentPrice:   round2(float64(current.Amount) / 100 * vacancy * occupancyWindowDays),
		WithSuggestedPrice: round2(float64(suggested.Amount) / 100 * vacancy * occupancyWindowDays * 0.95),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
