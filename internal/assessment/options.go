package assessment

import (
	"strconv"

	"github.com/mindwell/portal-gateway/internal/models"
)

// The 4-point BAI severity scale
var severityScale = []models.Option{
	{Value: "0", Text: "Not at all"},
	{Value: "1", Text: "Mildly, but it didn't bother me much"},
	{Value: "2", Text: "Moderately - it wasn't pleasant at times"},
	{Value: "3", Text: "Severely - it bothered me a lot"},
}

var yesNo = []models.Option{
	{Value: "1", Text: "Yes"},
	{Value: "0", Text: "No"},
}

// agreeOptions builds the 5-point agree scale. The label slots are fixed;
// only the value sequence flips with isPositive. spiritual is always scored
// in the positive direction.
func agreeOptions(slug string, isPositive bool) []models.Option {
	labels := [5]string{"Strongly Agree", "Disagree", neutralLabel(slug), "Agree", "Strongly Disagree"}

	positive := isPositive || slug == "spiritual"
	opts := make([]models.Option, len(labels))
	for i, label := range labels {
		v := i + 1
		if positive {
			v = len(labels) - i
		}
		opts[i] = models.Option{Value: strconv.Itoa(v), Text: label}
	}
	return opts
}

func neutralLabel(slug string) string {
	switch slug {
	case "aggression":
		return "Undecided"
	case "suicidal-ideation-scale":
		return "Uncertain"
	default:
		return "Neutral"
	}
}

// optionsFor returns the canonical options of a raw question under family f
func optionsFor(f Family, slug string, q models.RawQuestion) []models.Option {
	switch f {
	case FamilyAD5:
		return agreeOptions(slug, bool(q.IsPositive))
	case FamilyOC:
		return cloneOptions(severityScale)
	case FamilyYN:
		return cloneOptions(yesNo)
	case FamilyVT:
		return supplied(q.Options, func(o models.RawOption) string { return firstNonEmpty(o.Text, o.Label) })
	case FamilyVL, FamilyVLD, FamilyOL:
		return supplied(q.Options, func(o models.RawOption) string { return firstNonEmpty(o.Label, o.Text) })
	}
	return nil
}

func supplied(raw []models.RawOption, text func(models.RawOption) string) []models.Option {
	opts := make([]models.Option, 0, len(raw))
	for _, o := range raw {
		opts = append(opts, models.Option{Value: o.Value.String(), Text: text(o)})
	}
	return opts
}

func cloneOptions(src []models.Option) []models.Option {
	return append([]models.Option(nil), src...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
