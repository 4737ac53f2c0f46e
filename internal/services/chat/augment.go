package chat

import (
	"fmt"
	"strings"

	"github.com/mediconnect/assistant/internal/domain/chat/models"
)

// Template identifies which rewrite was applied to the latest user turn
type Template int

const (
	TemplateNone Template = iota
	TemplateNoData
	TemplatePersonal
	TemplatePlatform
)

func (t Template) String() string {
	switch t {
	case TemplateNoData:
		return "no_data"
	case TemplatePersonal:
		return "personal"
	case TemplatePlatform:
		return "platform"
	default:
		return "none"
	}
}

const (
	PersonalTag = "[PERSONAL DATA]"
	PlatformTag = "[PLATFORM DATA]"

	noDataTemplate   = "I searched the platform but %s. User's question: %s. Please provide helpful guidance and suggest alternatives."
	personalTemplate = PersonalTag + " The following is your MediConnect account data: %s. User's question: %s. Answer the question directly using this account data."
	platformTemplate = PlatformTag + " The following is current MediConnect platform data: %s. User's question: %s. Answer the question directly using this platform data."
)

// Classifier decides whether a message asks about the requester's own records
type Classifier func(message string, hasRequester bool) bool

var personalKeywords = []string{
	"my ",
	"mine",
	"appointment",
	"order",
	"payment",
	"prescription",
	"invoice",
	"booking",
	"booked",
}

// KeywordClassifier is a coarse case-insensitive substring match, not semantic understanding.
// It leans towards platform-wide: anything without a keyword hit is not personal.
func KeywordClassifier(message string, hasRequester bool) bool {
	if !hasRequester {
		return false
	}

	lower := strings.ToLower(message)
	for _, keyword := range personalKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// BuildAugmentedTurn rewrites original with the domain summary. The same inputs always
// select the same template; TemplateNone returns original unchanged.
func BuildAugmentedTurn(original string, result *models.QueryResult, hasRequester bool, classify Classifier) (string, Template) {
	if !result.HasSummary() {
		return original, TemplateNone
	}
	summary := strings.TrimSpace(result.Summary)

	if !result.HasUsableData() {
		return fmt.Sprintf(noDataTemplate, summary, original), TemplateNoData
	}

	if classify == nil {
		classify = KeywordClassifier
	}
	if hasRequester && classify(original, hasRequester) {
		return fmt.Sprintf(personalTemplate, summary, original), TemplatePersonal
	}
	return fmt.Sprintf(platformTemplate, summary, original), TemplatePlatform
}
