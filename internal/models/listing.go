package models

// Counsellor and Test are both listed, filtered and sorted by the catalog.
// These accessors give them one shape.

func (c Counsellor) ListingName() string          { return c.Name }
func (c Counsellor) ListingLanguages() []string   { return c.Languages }
func (c Counsellor) ListingSpecialties() []string { return c.Specialties }
func (c Counsellor) ListingGender() string        { return c.Gender }
func (c Counsellor) ListingExperience() float64   { return float64(c.Experience) }
func (c Counsellor) ListingRating() float64       { return float64(c.Rating) }
func (c Counsellor) ListingRates() []Rate         { return c.Rates }

func (t Test) ListingName() string          { return t.Title }
func (t Test) ListingLanguages() []string   { return t.Languages }
func (t Test) ListingSpecialties() []string { return t.Specialties }
func (t Test) ListingGender() string        { return "" }
func (t Test) ListingExperience() float64   { return 0 }
func (t Test) ListingRating() float64       { return float64(t.Rating) }
func (t Test) ListingRates() []Rate         { return t.Rates }
