package engine

import (
	"strings"
)

type failureClass int

const (
	failureHard failureClass = iota
	// failureSoft means the server is reachable but no game accepts players yet.
	failureSoft
)

var lobbyMarkers = []string{"no active game", "lobby ended"}

func classifyRegistration(err error) failureClass {
	if err == nil {
		return failureHard
	}
	msg := strings.ToLower(err.Error())
	for _, m := range lobbyMarkers {
		if strings.Contains(msg, m) {
			return failureSoft
		}
	}
	return failureHard
}

// nextRoundMessage turns "... next rounds: [100,200] ..." into
// "Next round: 100,200".
func nextRoundMessage(msg string) string {
	const fallback = "Waiting for next round..."

	start := strings.Index(msg, "next rounds:")
	if start < 0 {
		return fallback
	}
	rest := msg[start:]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return fallback
	}
	end := strings.IndexByte(rest[open:], ']')
	if end < 0 {
		return fallback
	}
	return "Next round: " + rest[open+1:open+end]
}
