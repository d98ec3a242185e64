package models

// Counsellor is an expert as listed by get_counsellors.php
type Counsellor struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	Gender          string     `json:"gender"`
	Languages       []string   `json:"languages"`
	Specialties     []string   `json:"specialties"`
	Experience      FlexFloat  `json:"experience"`
	Rating          FlexFloat  `json:"rating"`
	Rates           []Rate     `json:"rates"`
	ProfileImage    string     `json:"profile_image,omitempty"`
	Qualification   string     `json:"qualification,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	SessionModes    []string   `json:"session_modes,omitempty"`
	NextAvailableAt string     `json:"next_available_at,omitempty"`
}

// Rate is one priced offering of a counsellor or test. Price is kept as the
// raw backend string since it is not always numeric ("On request").
type Rate struct {
	Mode     string     `json:"mode,omitempty"`
	Duration FlexString `json:"duration,omitempty"`
	Price    FlexString `json:"price"`
}

// CounsellorDetails is the payload of get_counsellor_details.php
type CounsellorDetails struct {
	Counsellor
	About   string   `json:"about,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

// Review is a user review shown on the counsellor profile
type Review struct {
	UserName  string    `json:"user_name"`
	Rating    FlexFloat `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt string    `json:"created_at"`
}

// ScheduleSlot is one bookable slot from get_counsellor_schedule.php
type ScheduleSlot struct {
	Date      string   `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Modes     []string `json:"modes,omitempty"`
	Available FlexBool `json:"available"`
}

// Test is a psychometric test as listed by get_all_tests.php
type Test struct {
	ID          FlexString `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Languages   []string   `json:"languages,omitempty"`
	Specialties []string   `json:"specialties,omitempty"`
	Rating      FlexFloat  `json:"rating"`
	Rates       []Rate     `json:"rates,omitempty"`
	Duration    FlexString `json:"duration,omitempty"`
	IsActive    FlexBool   `json:"is_active"`
}

// PriceRange bounds a price filter
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterValues is the "available filter values" payload of get_filters.php
type FilterValues struct {
	Languages     []string   `json:"languages"`
	Specialties   []string   `json:"specialties"`
	Genders       []string   `json:"genders"`
	PriceRange    PriceRange `json:"price_range"`
	MaxExperience FlexFloat  `json:"max_experience"`
}

// Sort keys understood by the filter-sort engine
const (
	SortByRating     = "rating"
	SortByPrice      = "price"
	SortByExperience = "experience"
)

// FilterCriteria is the user's current filter selection for experts or tests
type FilterCriteria struct {
	SearchTerm    string     `json:"searchTerm"`
	Languages     []string   `json:"languages"`
	Specialties   []string   `json:"specialties"`
	Gender        string     `json:"gender"`
	PriceRange    PriceRange `json:"priceRange"`
	MinExperience float64    `json:"minExperience"`
	SortBy        string     `json:"sortBy"`

	// EnforcePriceRange turns the price predicate into a real filter.
	// Off by default: the range is tracked and rendered but not applied.
	EnforcePriceRange bool `json:"enforcePriceRange,omitempty"`
}

// BookTestRequest is the body of tests/book_test.php
type BookTestRequest struct {
	UserID   string `json:"user_id"`
	TestSlug string `json:"test_slug"`
}
