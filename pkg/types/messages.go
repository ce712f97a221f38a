package types

// Register (POST /register) -> RegistrationResponse
//   realm: string
//   name: string
//   lobbyEndsIn: number // seconds
//   nextTurn: number
//
// Move (POST /move):
//   moves: [{ ant: string, path: Hex[] }]
// -> Arena fields plus errors: string[]
//
// Logs (GET /logs) -> [{ message: string, time: string }]

type RegistrationResponse struct {
	Realm       string  `json:"realm"`
	Name        string  `json:"name"`
	LobbyEndsIn int     `json:"lobbyEndsIn"`
	NextTurn    float64 `json:"nextTurn"`
}

type MoveCommand struct {
	Ant  string `json:"ant"`
	Path []Hex  `json:"path"`
}

type MoveRequest struct {
	Moves []MoveCommand `json:"moves"`
}

// MoveResponse carries the full arena after the server accepted the batch.
// Errors lists per-command rejections; their presence does not fail the request.
type MoveResponse struct {
	ArenaResponse
	Errors []string `json:"errors"`
}

type LogMessage struct {
	Message string `json:"message"`
	Time    string `json:"time"`
}

// APIError is the body the server sends with non-2xx answers, when it sends one.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
