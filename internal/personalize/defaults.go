// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

// DefaultPreferences returns the preferences assumed for a user who has not
// declared any.
func DefaultPreferences() Preferences {
	return Preferences{
		Budget: Budget{Typical: 120, Currency: "EUR", Flexibility: "moderate"},
		Accommodation: Accommodation{
			PreferredTypes:     []string{"hotel", "boutique"},
			ImportantAmenities: []string{"wifi", "breakfast", "pool"},
			LocationPreference: "center",
		},
		Activities: Activities{
			PreferredCategories: []string{"culture", "outdoors"},
			IntensityLevel:      "moderate",
			CulturalInterest:    4,
			AdventureLevel:      3,
		},
		Culinary: Culinary{
			DietaryRestrictions:  []string{},
			CuisinePreferences:   []string{"local", "fusion"},
			PriceRangePreference: "mid",
			Adventurous:          true,
		},
		Travel: Travel{
			PreferredTravelStyle: "comfort",
			PlanningStyle:        "flexible",
			GroupDynamics:        "couple",
		},
	}
}

// DefaultBehaviorProfile returns the behavior assumed for a new user.
func DefaultBehaviorProfile() BehaviorProfile {
	return BehaviorProfile{
		BookingPatterns: BookingPatterns{
			AdvanceBookingDays:    30,
			PreferredBookingTimes: []string{"evening"},
		},
		SearchBehavior: SearchBehavior{
			AverageSearchTime:        45,
			ComparisonsBeforeBooking: 5,
			PriceThreshold:           150,
		},
		LoyaltyIndicators: LoyaltyIndicators{
			RepeatDestinations:    []string{},
			PreferredBrands:       []string{},
			TrustsRecommendations: true,
		},
	}
}

// fillPreferences copies defaults into zero-valued fields of p. Booleans are
// left as sent since false is a meaningful answer.
func fillPreferences(p *Preferences) {
	d := DefaultPreferences()

	fillFloat(&p.Budget.Typical, d.Budget.Typical)
	fillString(&p.Budget.Currency, d.Budget.Currency)
	fillString(&p.Budget.Flexibility, d.Budget.Flexibility)

	fillSlice(&p.Accommodation.PreferredTypes, d.Accommodation.PreferredTypes)
	fillSlice(&p.Accommodation.ImportantAmenities, d.Accommodation.ImportantAmenities)
	fillString(&p.Accommodation.LocationPreference, d.Accommodation.LocationPreference)

	fillSlice(&p.Activities.PreferredCategories, d.Activities.PreferredCategories)
	fillString(&p.Activities.IntensityLevel, d.Activities.IntensityLevel)
	fillInt(&p.Activities.CulturalInterest, d.Activities.CulturalInterest)
	fillInt(&p.Activities.AdventureLevel, d.Activities.AdventureLevel)

	if p.Culinary.DietaryRestrictions == nil {
		p.Culinary.DietaryRestrictions = []string{}
	}
	fillSlice(&p.Culinary.CuisinePreferences, d.Culinary.CuisinePreferences)
	fillString(&p.Culinary.PriceRangePreference, d.Culinary.PriceRangePreference)

	fillString(&p.Travel.PreferredTravelStyle, d.Travel.PreferredTravelStyle)
	fillString(&p.Travel.PlanningStyle, d.Travel.PlanningStyle)
	fillString(&p.Travel.GroupDynamics, d.Travel.GroupDynamics)
}

func fillBehaviorProfile(b *BehaviorProfile) {
	d := DefaultBehaviorProfile()

	fillInt(&b.BookingPatterns.AdvanceBookingDays, d.BookingPatterns.AdvanceBookingDays)
	fillSlice(&b.BookingPatterns.PreferredBookingTimes, d.BookingPatterns.PreferredBookingTimes)

	fillInt(&b.SearchBehavior.AverageSearchTime, d.SearchBehavior.AverageSearchTime)
	fillInt(&b.SearchBehavior.ComparisonsBeforeBooking, d.SearchBehavior.ComparisonsBeforeBooking)
	fillFloat(&b.SearchBehavior.PriceThreshold, d.SearchBehavior.PriceThreshold)

	if b.LoyaltyIndicators.RepeatDestinations == nil {
		b.LoyaltyIndicators.RepeatDestinations = []string{}
	}
	if b.LoyaltyIndicators.PreferredBrands == nil {
		b.LoyaltyIndicators.PreferredBrands = []string{}
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func fillFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func fillSlice(dst *[]string, def []string) {
	if len(*dst) == 0 {
		*dst = append([]string(nil), def...)
	}
}
