package catalog

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Listing is anything the catalog can filter and sort
type Listing interface {
	ListingName() string
	ListingLanguages() []string
	ListingSpecialties() []string
	ListingGender() string
	ListingExperience() float64
	ListingRating() float64
	ListingRates() []models.Rate
}

// Apply returns the items matching c, sorted by c.SortBy. The input is not
// modified and ties keep their input order.
func Apply[T Listing](items []T, c models.FilterCriteria) []T {
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))

	out := make([]T, 0, len(items))
	outOfRange := 0
	for _, item := range items {
		if !matchesTerm(item, term) ||
			!anyOf(item.ListingLanguages(), c.Languages) ||
			!anyOf(item.ListingSpecialties(), c.Specialties) ||
			!matchesGender(item, c.Gender) ||
			item.ListingExperience() < c.MinExperience {
			continue
		}

		if !PriceInRange(item, c.PriceRange) {
			outOfRange++
			if c.EnforcePriceRange {
				continue
			}
		}
		out = append(out, item)
	}

	if outOfRange > 0 && !c.EnforcePriceRange {
		slog.Debug("price range not enforced", "out_of_range", outOfRange)
	}

	sortListings(out, c.SortBy)
	return out
}

func sortListings[T Listing](items []T, by string) {
	switch by {
	case models.SortByRating:
		slices.SortStableFunc(items, func(a, b T) int {
			return cmp.Compare(b.ListingRating(), a.ListingRating())
		})
	case models.SortByPrice:
		slices.SortStableFunc(items, func(a, b T) int {
			return cmp.Compare(MinPrice(a.ListingRates()), MinPrice(b.ListingRates()))
		})
	case models.SortByExperience:
		slices.SortStableFunc(items, func(a, b T) int {
			return cmp.Compare(b.ListingExperience(), a.ListingExperience())
		})
	}
}

func matchesTerm(item Listing, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.ListingName()), term)
}

// anyOf is true when nothing is selected or have shares a value with selected
func anyOf(have, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		for _, h := range have {
			if strings.EqualFold(h, s) {
				return true
			}
		}
	}
	return false
}

func matchesGender(item Listing, gender string) bool {
	if gender == "" {
		return true
	}
	return strings.EqualFold(item.ListingGender(), gender)
}

// PriceInRange reports whether an item's cheapest rate lies in r. An unset
// range matches everything; an item without a parseable rate matches only
// the unset range.
func PriceInRange(item Listing, r models.PriceRange) bool {
	if r.Min <= 0 && r.Max <= 0 {
		return true
	}
	p := MinPrice(item.ListingRates())
	if math.IsInf(p, 1) {
		return false
	}
	if p < r.Min {
		return false
	}
	return r.Max <= 0 || p <= r.Max
}

// MinPrice returns the lowest parseable price of rates, or +Inf when none
// parses
func MinPrice(rates []models.Rate) float64 {
	lowest := math.Inf(1)
	for _, r := range rates {
		if p, ok := parsePrice(r.Price.String()); ok && p < lowest {
			lowest = p
		}
	}
	return lowest
}

// parsePrice reads "1500", "1,500.00" or "₹ 1500"
func parsePrice(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		if r == ',' || r == ' ' || r == '$' || r > 127 {
			return -1
		}
		return 'x'
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || p < 0 {
		return 0, false
	}
	return p, true
}

// DefaultCriteria initializes criteria from the available filter values:
// the full price range, nothing selected, sorted by rating
func DefaultCriteria(fv models.FilterValues) models.FilterCriteria {
	return models.FilterCriteria{
		Languages:   []string{},
		Specialties: []string{},
		PriceRange:  fv.PriceRange,
		SortBy:      models.SortByRating,
	}
}

// ParseCriteria reads criteria from query parameters. Multi-valued
// parameters may repeat or be comma separated.
func ParseCriteria(q url.Values) (models.FilterCriteria, error) {
	c := models.FilterCriteria{
		SearchTerm:  strings.TrimSpace(q.Get("q")),
		Languages:   multi(q, "language"),
		Specialties: multi(q, "specialty"),
		Gender:      strings.TrimSpace(q.Get("gender")),
		SortBy:      q.Get("sort"),
	}

	var err error
	if c.PriceRange.Min, err = floatParam(q, "min_price"); err != nil {
		return c, err
	}
	if c.PriceRange.Max, err = floatParam(q, "max_price"); err != nil {
		return c, err
	}
	if c.MinExperience, err = floatParam(q, "min_experience"); err != nil {
		return c, err
	}
	if v := q.Get("enforce_price"); v != "" {
		if c.EnforcePriceRange, err = strconv.ParseBool(v); err != nil {
			return c, fmt.Errorf("invalid enforce_price %q", v)
		}
	}

	switch c.SortBy {
	case "", models.SortByRating, models.SortByPrice, models.SortByExperience:
	default:
		return c, fmt.Errorf("invalid sort %q", c.SortBy)
	}
	return c, nil
}

func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}
