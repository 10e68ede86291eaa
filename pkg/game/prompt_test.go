package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPromptSubstitutesColor(t *testing.T) {
	prompt := BuildSystemPrompt("WHITE")
	assert.Contains(t, prompt, "playing chess as WHITE")
}

func TestBuildUserMessageFreshGame(t *testing.T) {
	assert.Equal(t, gameStartsNowMessage, BuildUserMessage("", ""))
}

func TestBuildUserMessageWithPGN(t *testing.T) {
	msg := BuildUserMessage("1. e4 e5", "")
	assert.Equal(t, "1. e4 e5", msg)
}

func TestBuildUserMessageAugmentsOnRetry(t *testing.T) {
	msg := BuildUserMessage("1. e4 e5", "Z9")
	assert.Contains(t, msg, `"Z9"`)
	assert.Contains(t, msg, "not legal")
}

func TestParseResponseJSONSchema(t *testing.T) {
	parsed := ParseResponse(`{"move": "Nf3", "dialogue": "developing"}`)
	require.Equal(t, "Nf3", parsed.SAN)
	require.NotNil(t, parsed.Dialogue)
	assert.Equal(t, "developing", *parsed.Dialogue)
}

func TestParseResponseJSONEmbeddedInProse(t *testing.T) {
	parsed := ParseResponse("Sure, here's my move: {\"move\": \"e4\"} good luck")
	assert.Equal(t, "e4", parsed.SAN)
}

func TestParseResponseBareSAN(t *testing.T) {
	parsed := ParseResponse("Nf3")
	assert.Equal(t, "Nf3", parsed.SAN)
	assert.Nil(t, parsed.Dialogue)
}

func TestParseResponseStripsThinkBlock(t *testing.T) {
	parsed := ParseResponse("<think>considering e4 vs d4</think>e4")
	assert.Equal(t, "e4", parsed.SAN)
}

func TestParseResponseStripsQuotesAndPunctuation(t *testing.T) {
	parsed := ParseResponse(`"Nf3."`)
	assert.Equal(t, "Nf3", parsed.SAN)
}

func TestParseResponseScansTokensForSANLikeWord(t *testing.T) {
	parsed := ParseResponse("I think I will play Nf3 to develop the knight")
	assert.Equal(t, "Nf3", parsed.SAN, "picks the first token that looks like SAN, not the last")
}

func TestParseResponseFallsBackToLastTokenWhenNoneLookLikeSAN(t *testing.T) {
	parsed := ParseResponse("I am still thinking it over")
	assert.Equal(t, "over", parsed.SAN)
}

func TestParseResponseFindsCastlingLiteralAmongTokens(t *testing.T) {
	parsed := ParseResponse("my move is O-O this turn")
	assert.Equal(t, "O-O", parsed.SAN)
}
