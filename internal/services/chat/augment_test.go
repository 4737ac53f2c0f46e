package chat

import (
	"strings"
	"testing"

	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		hasRequester bool
		want         bool
	}{
		{"possessive", "show my appointments", true, true},
		{"upper case", "WHERE IS MY ORDER", true, true},
		{"payment", "did the payment go through", true, true},
		{"prescription", "refill prescription please", true, true},
		{"platform question", "what pharmacies carry ibuprofen", true, false},
		{"no requester", "show my appointments", false, false},
		{"empty", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordClassifier(tt.message, tt.hasRequester))
		})
	}
}

func TestBuildAugmentedTurn(t *testing.T) {
	items := []interface{}{map[string]interface{}{"id": 1}}

	tests := []struct {
		name         string
		original     string
		result       *models.QueryResult
		hasRequester bool
		want         Template
	}{
		{"nil result", "show my appointments", nil, true, TemplateNone},
		{"empty summary and data", "show my appointments", &models.QueryResult{}, true, TemplateNone},
		{"data without summary", "show my appointments", &models.QueryResult{Data: items}, true, TemplateNone},
		{"summary without data", "find a cardiologist", &models.QueryResult{Summary: "found no cardiologists"}, true, TemplateNoData},
		{"summary with empty list", "find a cardiologist", &models.QueryResult{Summary: "found nothing", Data: []interface{}{}}, true, TemplateNoData},
		{"summary with empty typed list", "show my appointments", &models.QueryResult{Summary: "found nothing", Data: []struct{ ID string }{}}, true, TemplateNoData},
		{"personal", "show my appointments", &models.QueryResult{Summary: "you have 2 appointments", Data: items}, true, TemplatePersonal},
		{"platform", "what pharmacies carry ibuprofen", &models.QueryResult{Summary: "3 items found", Data: items}, true, TemplatePlatform},
		{"personal keyword without requester", "show my appointments", &models.QueryResult{Summary: "2 found", Data: items}, false, TemplatePlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, template := BuildAugmentedTurn(tt.original, tt.result, tt.hasRequester, KeywordClassifier)
			assert.Equal(t, tt.want, template)

			if tt.want == TemplateNone {
				assert.Equal(t, tt.original, got)
				return
			}
			assert.Contains(t, got, tt.original)
			assert.Contains(t, got, strings.TrimSpace(tt.result.Summary))
		})
	}
}

func TestBuildAugmentedTurnTemplates(t *testing.T) {
	data := []interface{}{"x"}

	noData, _ := BuildAugmentedTurn("find a dentist", &models.QueryResult{Summary: "found no dentists nearby"}, true, nil)
	assert.Equal(t, "I searched the platform but found no dentists nearby. User's question: find a dentist. Please provide helpful guidance and suggest alternatives.", noData)

	personal, _ := BuildAugmentedTurn("show my appointments", &models.QueryResult{Summary: "you have 2 appointments", Data: data}, true, nil)
	assert.True(t, strings.HasPrefix(personal, PersonalTag))
	assert.Contains(t, personal, "your MediConnect account data")

	platform, _ := BuildAugmentedTurn("list pharmacies", &models.QueryResult{Summary: "3 items found", Data: data}, true, nil)
	assert.True(t, strings.HasPrefix(platform, PlatformTag))
	assert.NotContains(t, platform, "account data")
}

func TestBuildAugmentedTurnIsDeterministic(t *testing.T) {
	result := &models.QueryResult{Summary: "you have 2 appointments", Data: []interface{}{"a", "b"}}

	first, firstTemplate := BuildAugmentedTurn("show my appointments", result, true, KeywordClassifier)
	for i := 0; i < 20; i++ {
		got, template := BuildAugmentedTurn("show my appointments", result, true, KeywordClassifier)
		assert.Equal(t, firstTemplate, template)
		assert.Equal(t, first, got)
	}
}

func TestBuildAugmentedTurnCustomClassifier(t *testing.T) {
	always := func(string, bool) bool { return true }

	_, template := BuildAugmentedTurn("what pharmacies carry ibuprofen", &models.QueryResult{Summary: "3 items", Data: "stock"}, true, always)

	assert.Equal(t, TemplatePersonal, template)
}
