package routing

import (
	"strings"
	"unicode/utf8"

	"herald/internal/constants"
	"herald/internal/keyword"
	"herald/pkg/models"
)

// Human-facing category tags.
const (
	CategoryFinancial  = "financial"
	CategorySecurity   = "security"
	CategoryPromotions = "promotions"
	CategoryGroup      = "group"
	CategoryPersonal   = "personal"
	CategoryOther      = "other"
)

var validCategories = map[string]bool{
	CategoryFinancial:  true,
	CategorySecurity:   true,
	CategoryPromotions: true,
	CategoryGroup:      true,
	CategoryPersonal:   true,
	CategoryOther:      true,
}

// CategoryFallback assigns a category and summary deterministically from
// keyword matches. Used when the inference capability is off or failing;
// it always produces a valid result.
type CategoryFallback struct {
	matcher *keyword.Matcher
}

func NewCategoryFallback() *CategoryFallback {
	return &CategoryFallback{matcher: keyword.NewMatcher()}
}

// Categorize maps the message to its most specific category.
func (f *CategoryFallback) Categorize(msg *models.NormalizedMessage) string {
	text := msg.Text()

	if len(strings.TrimSpace(text)) == 0 {
		return CategoryOther
	}
	if msg.IsGroup() {
		return CategoryGroup
	}

	matches := f.matcher.Match(text)
	switch {
	case len(matches[keyword.DomainFinancial]) > 0:
		return CategoryFinancial
	case len(matches[keyword.DomainSecurity]) > 0:
		return CategorySecurity
	case len(matches[keyword.DomainMarketing]) >= 2:
		return CategoryPromotions
	default:
		return CategoryPersonal
	}
}

// Summarize produces a short summary by truncating the content on a rune
// boundary.
func (f *CategoryFallback) Summarize(msg *models.NormalizedMessage) string {
	text := strings.TrimSpace(msg.Text())
	if text == "" {
		return "(sem conteúdo textual)"
	}
	return truncateRunes(text, constants.SummaryMaxLen)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
