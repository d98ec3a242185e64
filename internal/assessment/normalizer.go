package assessment

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mindwell/portal-gateway/internal/models"
)

// maxPages bounds the sequential page walk against a backend reporting a
// nonsensical total
const maxPages = 50

var tracer = otel.Tracer("github.com/mindwell/portal-gateway/internal/assessment")

// QuestionSource fetches one page of a test's questions
type QuestionSource interface {
	GetQuestionsPage(ctx context.Context, slug string, page int) (*models.QuestionPage, error)
}

// Normalizer turns the backend's per-family question payloads into one
// canonical AssessmentSet
type Normalizer struct {
	source QuestionSource
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(source QuestionSource) *Normalizer {
	return &Normalizer{source: source}
}

// GetQuestions loads the questions of a test. It never fails: any error is
// logged and the empty set is returned so callers can always render.
func (n *Normalizer) GetQuestions(ctx context.Context, slug string) models.AssessmentSet {
	set, err := n.Load(ctx, slug)
	if err != nil {
		slog.Error("failed to load questions", "slug", slug, "error", err)
		return models.EmptyAssessmentSet()
	}
	return set
}

// Load loads and normalizes the questions of a test
func (n *Normalizer) Load(ctx context.Context, slug string) (models.AssessmentSet, error) {
	family, err := FamilyOf(slug)
	if err != nil {
		return models.AssessmentSet{}, err
	}

	ctx, span := tracer.Start(ctx, "assessment.Load")
	defer span.End()
	span.SetAttributes(
		attribute.String("test.slug", slug),
		attribute.String("test.family", family.String()),
	)

	set, err := n.load(ctx, family, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.AssessmentSet{}, err
	}
	span.SetAttributes(
		attribute.Int("questions.count", len(set.Questions)),
		attribute.Int("questions.pages", set.Pages),
	)
	return set, nil
}

func (n *Normalizer) load(ctx context.Context, family Family, slug string) (models.AssessmentSet, error) {
	if family == FamilyOL {
		return models.AssessmentSet{}, fmt.Errorf("%s (%s): %w", slug, family, ErrFamilyNotImplemented)
	}

	first, err := n.source.GetQuestionsPage(ctx, slug, 1)
	if err != nil {
		return models.AssessmentSet{}, fmt.Errorf("failed to fetch page 1 of %s: %w", slug, err)
	}

	if !family.Paginated() {
		set := models.AssessmentSet{
			Pages:     1,
			Questions: normalizeQuestions(family, slug, first.Items()),
			TestInfo:  testInfo(first.TestInfo),
		}
		return set, nil
	}

	total := first.PageCount()
	if total > maxPages {
		slog.Warn("page count capped", "slug", slug, "reported", total, "cap", maxPages)
		total = maxPages
	}

	raw := append([]models.RawQuestion(nil), first.Items()...)
	for page := 2; page <= total; page++ {
		p, err := n.source.GetQuestionsPage(ctx, slug, page)
		if err != nil {
			return models.AssessmentSet{}, fmt.Errorf("failed to fetch page %d of %s: %w", page, slug, err)
		}
		raw = append(raw, p.Items()...)
	}

	return models.AssessmentSet{
		Pages:     total,
		Questions: normalizeQuestions(family, slug, raw),
	}, nil
}

// normalizeQuestions maps raw questions to canonical ones in source order.
// Repeated question numbers keep the first occurrence, and questions left
// without options are dropped.
func normalizeQuestions(family Family, slug string, raw []models.RawQuestion) []models.Question {
	seen := make(map[string]struct{}, len(raw))
	out := make([]models.Question, 0, len(raw))

	for _, rq := range raw {
		number := rq.Number()
		if _, dup := seen[number]; dup {
			slog.Warn("duplicate question dropped", "slug", slug, "question", number)
			continue
		}

		opts := optionsFor(family, slug, rq)
		if len(opts) == 0 {
			slog.Warn("question without options dropped", "slug", slug, "question", number)
			continue
		}

		seen[number] = struct{}{}
		out = append(out, models.Question{
			QuestionNumber: number,
			QuestionText:   rq.Text(),
			Options:        opts,
		})
	}
	return out
}

func testInfo(raw *models.RawTestInfo) *models.TestInfo {
	if raw == nil {
		return nil
	}
	return &models.TestInfo{
		Title:        firstNonEmpty(raw.Title, raw.TestName),
		Duration:     raw.Duration.String(),
		Instructions: raw.Instructions,
	}
}
