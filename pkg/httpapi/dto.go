package httpapi

import "github.com/PurinNyova/LLM-Chess-Arena/pkg/game"

// startRequest is the body of POST /api/game/start. Every field is optional;
// an absent LLM-side credential falls back to the server's configured
// default for that side.
type startRequest struct {
	WhiteAPIURL string `json:"whiteApiUrl"`
	WhiteAPIKey string `json:"whiteApiKey"`
	WhiteModel  string `json:"whiteModel"`
	BlackAPIURL string `json:"blackApiUrl"`
	BlackAPIKey string `json:"blackApiKey"`
	BlackModel  string `json:"blackModel"`
	MaxRetries  int     `json:"maxRetries"`
	BaseTime    float64 `json:"baseTime"`  // minutes; 0 means unlimited
	Increment   float64 `json:"increment"` // seconds
	HumanSide   string  `json:"humanSide"`
	Password    string  `json:"password"`
}

// startResponse is returned on a successful POST /api/game/start.
type startResponse struct {
	Message string            `json:"message"`
	State   game.StateSnapshot `json:"state"`
	Bypass  bool              `json:"bypass"`
}

// moveRequest is the body of POST /api/game/move.
type moveRequest struct {
	Move string `json:"move"`
}

// tokenResponse is returned by POST /api/token.
type tokenResponse struct {
	Token string `json:"token"`
}

// errorResponse is the uniform error body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// cooldownResponse is returned instead of errorResponse on a 429. Bypass is
// always false on this path — a successful bypass never reaches the 429
// branch at all.
type cooldownResponse struct {
	Error       string `json:"error"`
	RemainingMS int64  `json:"remainingMs"`
	Bypass      bool   `json:"bypass"`
}

// squareDTO is the wire shape of one {file, rank} coordinate.
type squareDTO struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

// legalMovesResponse is returned by GET /api/game/legal-moves.
type legalMovesResponse struct {
	Moves []squareDTO `json:"moves"`
}

// modelsRequest is the body of POST /api/models.
type modelsRequest struct {
	APIURL string `json:"apiUrl"`
	APIKey string `json:"apiKey"`
}

// modelDTO is one entry of a models listing response.
type modelDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// modelsResponse is returned by POST /api/models and /api/models/default.
type modelsResponse struct {
	Models []modelDTO `json:"models"`
}

// messageResponse is the uniform body for actions with nothing else to
// report (stop, reset, move accepted).
type messageResponse struct {
	Message string `json:"message"`
}
