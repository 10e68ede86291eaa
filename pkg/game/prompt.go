package game

import (
	"encoding/json"
	"regexp"
	"strings"
)

// systemPromptTemplate is the fixed system prompt, with {{color}} substituted
// for the side to move. Either schema below is accepted in the response.
const systemPromptTemplate = `You are playing chess as {{color}}. You will be shown the game so far in PGN move text (or told the game is starting). Reply with your move in Standard Algebraic Notation (SAN), e.g. "Nf3", "exd5", "O-O", "e8=Q".

You may respond with either:
  - bare SAN, e.g. Nf3
  - a JSON object {"move": "<SAN>", "dialogue": "<optional one-line remark>"}

Respond with your move only; do not explain your reasoning in the move field.`

const gameStartsNowMessage = "The game starts now. You are to move."

// BuildSystemPrompt renders the fixed template for the side to move.
func BuildSystemPrompt(color string) string {
	return strings.ReplaceAll(systemPromptTemplate, "{{color}}", color)
}

// BuildUserMessage renders the user turn, the current PGN if any plies have
// been played, augmented with a correction line when the prior attempt was
// illegal.
func BuildUserMessage(pgn string, lastIllegalSAN string) string {
	msg := gameStartsNowMessage
	if pgn != "" {
		msg = pgn
	}
	if lastIllegalSAN != "" {
		msg += "\n\nYour last move \"" + lastIllegalSAN + "\" was not legal. Respond with a different, legal move."
	}
	return msg
}

// sanLikeRegexp matches tokens that look like SAN move text (§4.4 response
// parsing fallback), excluding the castling literals, which are checked
// separately since "O-O"/"0-0" don't fit the piece-letter-first shape.
var sanLikeRegexp = regexp.MustCompile(`^[KQRBNa-h][a-h1-8x=+#]*$`)

var castlingLiterals = map[string]bool{
	"O-O": true, "O-O-O": true, "0-0": true, "0-0-0": true,
}

// jsonMoveCandidate is the JSON schema the prompt offers the model.
type jsonMoveCandidate struct {
	Move     string  `json:"move"`
	Dialogue *string `json:"dialogue"`
}

// ParsedResponse is the outcome of parsing one LLM response.
type ParsedResponse struct {
	SAN      string
	Dialogue *string
}

// firstJSONObject returns the substring of s spanning its first balanced
// top-level {...} object, or "" if none is found.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

var thinkBlockRegexp = regexp.MustCompile(`(?is)<think>.*?</think>`)

// ParseResponse extracts a SAN move and optional dialogue from raw LLM
// output (§4.4 "Response parsing"). It first tries the JSON schema; failing
// that, it falls back to stripping residual think-tags, quotes, and scanning
// whitespace-separated tokens for one that looks like SAN.
func ParseResponse(raw string) ParsedResponse {
	if obj := firstJSONObject(raw); obj != "" {
		var cand jsonMoveCandidate
		if err := json.Unmarshal([]byte(obj), &cand); err == nil && cand.Move != "" {
			return ParsedResponse{SAN: cand.Move, Dialogue: cand.Dialogue}
		}
	}

	text := thinkBlockRegexp.ReplaceAllString(raw, "")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ParsedResponse{SAN: ""}
	}

	chosen := tokens[len(tokens)-1]
	for _, tok := range tokens {
		if castlingLiterals[tok] || sanLikeRegexp.MatchString(tok) {
			chosen = tok
			break
		}
	}

	chosen = strings.TrimRight(chosen, ".,;:!?")
	return ParsedResponse{SAN: chosen}
}
