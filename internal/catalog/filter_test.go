package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/models"
)

func counsellor(id string, rating float64, prices ...string) models.Counsellor {
	c := models.Counsellor{
		ID:     models.FlexString(id),
		Name:   "Counsellor " + id,
		Rating: models.FlexFloat(rating),
	}
	for _, p := range prices {
		c.Rates = append(c.Rates, models.Rate{Price: models.FlexString(p)})
	}
	return c
}

func ids(cs []models.Counsellor) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID.String()
	}
	return out
}

func TestSortByRatingIsStable(t *testing.T) {
	in := []models.Counsellor{
		counsellor("first", 3),
		counsellor("second", 5),
		counsellor("third", 5),
	}

	got := Apply(in, models.FilterCriteria{SortBy: models.SortByRating})
	assert.Equal(t, []string{"second", "third", "first"}, ids(got))
	assert.Equal(t, []string{"first", "second", "third"}, ids(in), "input untouched")
}

func TestSortByPriceUnpricedLast(t *testing.T) {
	in := []models.Counsellor{
		counsellor("none", 5),
		counsellor("on-request", 5, "On request"),
		counsellor("cheap", 1, "800", "₹ 1,200"),
		counsellor("pricey", 4, "2,500.00"),
		counsellor("mixed", 2, "n/a", "1000"),
	}

	got := Apply(in, models.FilterCriteria{SortBy: models.SortByPrice})
	assert.Equal(t, []string{"cheap", "mixed", "pricey", "none", "on-request"}, ids(got))
}

func TestSortByExperience(t *testing.T) {
	a := counsellor("a", 0)
	a.Experience = 3
	b := counsellor("b", 0)
	b.Experience = 12
	c := counsellor("c", 0)
	c.Experience = 3

	got := Apply([]models.Counsellor{a, b, c}, models.FilterCriteria{SortBy: models.SortByExperience})
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestFilterPredicates(t *testing.T) {
	asha := models.Counsellor{ID: "1", Name: "Asha Rao", Gender: "Female", Languages: []string{"English", "Hindi"}, Specialties: []string{"Anxiety"}, Experience: 8}
	ravi := models.Counsellor{ID: "2", Name: "Ravi Menon", Gender: "Male", Languages: []string{"Malayalam"}, Specialties: []string{"Couples", "Grief"}, Experience: 3}
	meera := models.Counsellor{ID: "3", Name: "Meera Shah", Gender: "female", Languages: []string{"Gujarati", "English"}, Specialties: []string{"Grief"}, Experience: 15}
	all := []models.Counsellor{asha, ravi, meera}

	tests := []struct {
		name string
		c    models.FilterCriteria
		want []string
	}{
		{"no criteria", models.FilterCriteria{}, []string{"1", "2", "3"}},
		{"search", models.FilterCriteria{SearchTerm: "  rao "}, []string{"1"}},
		{"languages or", models.FilterCriteria{Languages: []string{"hindi", "Malayalam"}}, []string{"1", "2"}},
		{"specialties", models.FilterCriteria{Specialties: []string{"Grief"}}, []string{"2", "3"}},
		{"gender", models.FilterCriteria{Gender: "FEMALE"}, []string{"1", "3"}},
		{"experience", models.FilterCriteria{MinExperience: 8}, []string{"1", "3"}},
		{"conjunction", models.FilterCriteria{Languages: []string{"English"}, Specialties: []string{"Grief"}}, []string{"3"}},
		{"nothing", models.FilterCriteria{SearchTerm: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(all, tt.c)))
		})
	}
}

func TestPriceRangeNotEnforcedByDefault(t *testing.T) {
	in := []models.Counsellor{
		counsellor("cheap", 0, "500"),
		counsellor("pricey", 0, "5000"),
		counsellor("unpriced", 0),
	}
	r := models.PriceRange{Min: 1000, Max: 3000}

	assert.Equal(t, []string{"cheap", "pricey", "unpriced"}, ids(Apply(in, models.FilterCriteria{PriceRange: r})))
	assert.Empty(t, Apply(in, models.FilterCriteria{PriceRange: r, EnforcePriceRange: true}))

	r = models.PriceRange{Min: 100, Max: 1000}
	assert.Equal(t, []string{"cheap"}, ids(Apply(in, models.FilterCriteria{PriceRange: r, EnforcePriceRange: true})))

	assert.True(t, PriceInRange(in[2], models.PriceRange{}))
	assert.False(t, PriceInRange(in[2], r))
}

func TestApplyToTests(t *testing.T) {
	tests := []models.Test{
		{Slug: "wbs", Title: "Wellbeing Scale", Rating: 4, Languages: []string{"English"}},
		{Slug: "bai", Title: "Beck Anxiety Inventory", Rating: 4.5, Languages: []string{"English", "Hindi"}},
		{Slug: "adss", Title: "Anxiety Depression Screen", Rating: 3},
	}

	got := Apply(tests, models.FilterCriteria{SearchTerm: "anxiety", SortBy: models.SortByRating})
	require.Len(t, got, 2)
	assert.Equal(t, "bai", got[0].Slug)
	assert.Equal(t, "adss", got[1].Slug)
}

func TestDefaultCriteria(t *testing.T) {
	c := DefaultCriteria(models.FilterValues{
		Languages:  []string{"English"},
		PriceRange: models.PriceRange{Min: 500, Max: 4000},
	})
	assert.Equal(t, models.PriceRange{Min: 500, Max: 4000}, c.PriceRange)
	assert.Equal(t, models.SortByRating, c.SortBy)
	assert.Empty(t, c.Languages)
	assert.False(t, c.EnforcePriceRange)
}

func TestParseCriteria(t *testing.T) {
	q := url.Values{
		"q":              {"asha"},
		"language":       {"English,Hindi", "Tamil"},
		"specialty":      {"Grief"},
		"gender":         {"female"},
		"min_price":      {"500"},
		"max_price":      {"2000"},
		"min_experience": {"5"},
		"sort":           {"price"},
	}

	c, err := ParseCriteria(q)
	require.NoError(t, err)
	assert.Equal(t, "asha", c.SearchTerm)
	assert.Equal(t, []string{"English", "Hindi", "Tamil"}, c.Languages)
	assert.Equal(t, []string{"Grief"}, c.Specialties)
	assert.Equal(t, "female", c.Gender)
	assert.Equal(t, models.PriceRange{Min: 500, Max: 2000}, c.PriceRange)
	assert.Equal(t, 5.0, c.MinExperience)
	assert.Equal(t, models.SortByPrice, c.SortBy)

	for _, bad := range []url.Values{
		{"sort": {"name"}},
		{"min_price": {"cheap"}},
		{"min_experience": {"-1"}},
		{"enforce_price": {"maybe"}},
	} {
		_, err := ParseCriteria(bad)
		assert.Error(t, err, bad.Encode())
	}
}
