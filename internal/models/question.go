package models

// Option is one selectable answer of a canonical question
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Question is the canonical question shape used by every renderer,
// regardless of which backend family it came from.
type Question struct {
	QuestionNumber string   `json:"questionNumber"`
	QuestionText   string   `json:"questionText"`
	Options        []Option `json:"options"`
}

// TestInfo carries the test metadata some families return with their questions
type TestInfo struct {
	Title        string `json:"title,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// AssessmentSet is the normalized result of loading a test's questions
type AssessmentSet struct {
	Pages     int        `json:"pages"`
	Questions []Question `json:"questions"`
	TestInfo  *TestInfo  `json:"testInfo,omitempty"`
}

// EmptyAssessmentSet returns the well-formed empty set rendered as "no questions"
func EmptyAssessmentSet() AssessmentSet {
	return AssessmentSet{Pages: 0, Questions: []Question{}}
}

// UserResponses maps a question number to the selected option value
type UserResponses map[string]string

// RawOption is a backend-supplied option. Families disagree on whether the
// display text lives under "label" or "text".
type RawOption struct {
	Value FlexString `json:"value"`
	Label string     `json:"label"`
	Text  string     `json:"text"`
}

// RawQuestion is one question as returned by a_get_questions.php
type RawQuestion struct {
	QuestionNumber FlexString  `json:"question_number"`
	ID             FlexString  `json:"id"`
	QuestionText   string      `json:"question_text"`
	Question       string      `json:"question"`
	IsPositive     FlexBool    `json:"is_positive"`
	Options        []RawOption `json:"options"`
}

// Number returns the question number, falling back to the row id
func (q RawQuestion) Number() string {
	if q.QuestionNumber != "" {
		return q.QuestionNumber.String()
	}
	return q.ID.String()
}

// Text returns the question text under whichever key the family used
func (q RawQuestion) Text() string {
	if q.QuestionText != "" {
		return q.QuestionText
	}
	return q.Question
}

// RawPagination is the nested pagination envelope
type RawPagination struct {
	CurrentPage FlexInt `json:"current_page"`
	TotalPages  FlexInt `json:"total_pages"`
}

// RawTestInfo is the test metadata block returned by single-page families
type RawTestInfo struct {
	Title        string     `json:"title"`
	TestName     string     `json:"test_name"`
	Duration     FlexString `json:"duration"`
	Instructions string     `json:"instructions"`
}

// QuestionPage is one page of questions. Two envelope shapes exist:
// flat ({"questions": [...], "total_pages": N}) and nested
// ({"data": [...], "pagination": {"total_pages": N}}).
type QuestionPage struct {
	Status     string         `json:"status"`
	Questions  []RawQuestion  `json:"questions"`
	Data       []RawQuestion  `json:"data"`
	TotalPages FlexInt        `json:"total_pages"`
	Pages      FlexInt        `json:"pages"`
	Pagination *RawPagination `json:"pagination"`
	TestInfo   *RawTestInfo   `json:"test_info"`
}

// Items returns the questions of the page under whichever envelope was used
func (p *QuestionPage) Items() []RawQuestion {
	if len(p.Questions) > 0 {
		return p.Questions
	}
	return p.Data
}

// PageCount returns the total page count reported by the page, or 1
// when the envelope carries none
func (p *QuestionPage) PageCount() int {
	switch {
	case p.Pagination != nil && p.Pagination.TotalPages > 0:
		return int(p.Pagination.TotalPages)
	case p.TotalPages > 0:
		return int(p.TotalPages)
	case p.Pages > 0:
		return int(p.Pages)
	}
	return 1
}

// SubmitAnswersRequest is the body of b_submit_answers.php
type SubmitAnswersRequest struct {
	UserID   string        `json:"user_id"`
	TestSlug string        `json:"test_slug"`
	Answers  UserResponses `json:"answers"`
}
