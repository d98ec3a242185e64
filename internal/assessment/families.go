package assessment

import (
	"errors"
	"fmt"
)

// Family is the backend response shape a test's questions arrive in
type Family int

const (
	// FamilyVL options carry value+label, paginated
	FamilyVL Family = iota + 1
	// FamilyVT options carry value+text, paginated
	FamilyVT
	// FamilyAD5 options are synthesized from a 5-point agree scale, paginated
	FamilyAD5
	// FamilyVLD options carry value+label, single page with test metadata
	FamilyVLD
	// FamilyOL is the option-list shape used by bdi
	FamilyOL
	// FamilyOC options are synthesized from the 4-point severity scale
	FamilyOC
	// FamilyYN options are synthesized Yes/No
	FamilyYN
)

// ErrFamilyNotImplemented is returned for families the normalizer knows about
// but cannot load yet
var ErrFamilyNotImplemented = errors.New("question family not implemented")

// UnknownTestError is returned for a slug that maps to no family
type UnknownTestError struct {
	Slug string
}

func (e *UnknownTestError) Error() string {
	return fmt.Sprintf("unknown test %q", e.Slug)
}

// FamilyOf returns the family of a test slug
func FamilyOf(slug string) (Family, error) {
	switch slug {
	case "wbs", "ies", "rrs", "sis", "scs":
		return FamilyVL, nil
	case "happiness":
		return FamilyVT, nil
	case "spiritual", "aggression", "suicidal-ideation-scale":
		return FamilyAD5, nil
	case "schizophrenia", "scat", "academic", "pre-marital", "sas":
		return FamilyVLD, nil
	case "bdi":
		return FamilyOL, nil
	case "bai":
		return FamilyOC, nil
	case "adss":
		return FamilyYN, nil
	}
	return 0, &UnknownTestError{Slug: slug}
}

// Paginated reports whether the family spans several pages
func (f Family) Paginated() bool {
	switch f {
	case FamilyVL, FamilyVT, FamilyAD5, FamilyOC, FamilyYN:
		return true
	case FamilyVLD, FamilyOL:
		return false
	}
	panic(fmt.Sprintf("assessment: unhandled family %d", int(f)))
}

// String implements fmt.Stringer
func (f Family) String() string {
	switch f {
	case FamilyVL:
		return "vl"
	case FamilyVT:
		return "vt"
	case FamilyAD5:
		return "ad5"
	case FamilyVLD:
		return "vld"
	case FamilyOL:
		return "ol"
	case FamilyOC:
		return "oc"
	case FamilyYN:
		return "yn"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Slugs returns every mapped slug, grouped by family in declaration order
func Slugs() []string {
	return []string{
		"wbs", "ies", "rrs", "sis", "scs",
		"happiness",
		"spiritual", "aggression", "suicidal-ideation-scale",
		"schizophrenia", "scat", "academic", "pre-marital", "sas",
		"bdi",
		"bai",
		"adss",
	}
}
