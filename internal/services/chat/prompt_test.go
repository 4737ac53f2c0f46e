package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)
}

func TestComposeIncludesDateAndRules(t *testing.T) {
	composer := NewComposer(fixedClock)
	turns := []models.ChatTurn{{Role: models.RoleUser, Content: "What are your hours?"}}

	req := composer.Compose(turns, "")

	assert.Contains(t, req.System, "Today is Tuesday, March 3, 2026.")
	assert.Contains(t, req.System, "## Formatting")
	assert.Contains(t, req.System, "NEVER use markdown")
	assert.Contains(t, req.System, "## Medical Safety")
	assert.Contains(t, req.System, "NEVER diagnose")
	assert.Contains(t, req.System, "emergency services")
	assert.Contains(t, req.System, "NEVER recommend another telemedicine platform")
	assert.Contains(t, req.System, "## Platform Scope")
	assert.Contains(t, req.System, "<"+CoreGuardID+">")
	assert.Equal(t, turns, req.Turns)
}

func TestComposeContextBlockOnlyForRequesters(t *testing.T) {
	composer := NewComposer(fixedClock)
	turns := []models.ChatTurn{{Role: models.RoleUser, Content: "hi"}}

	anonymous := composer.Compose(turns, "")
	identified := composer.Compose(turns, "u1")

	assert.NotContains(t, anonymous.System, "## Context Data")
	assert.Contains(t, identified.System, "## Context Data")
	assert.Contains(t, identified.System, PersonalTag)
	assert.Contains(t, identified.System, PlatformTag)
	assert.True(t, strings.HasPrefix(identified.System, anonymous.System))
}

func TestComposeIsDeterministicAndCopiesTurns(t *testing.T) {
	composer := NewComposer(fixedClock)
	turns := []models.ChatTurn{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi there"},
	}

	first := composer.Compose(turns, "u1")
	second := composer.Compose(turns, "u1")
	assert.Equal(t, first, second)

	first.Turns[0].Content = "changed"
	assert.Equal(t, "hello", turns[0].Content)
}

func TestNewComposerDefaultsToWallClock(t *testing.T) {
	composer := NewComposer(nil)

	req := composer.Compose(nil, "")

	assert.Contains(t, req.System, time.Now().Format(dateLayout))
	assert.Empty(t, req.Turns)
}
