package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingToken = errors.New("API_TOKEN is not set")
var ErrInvalidURL = errors.New("invalid server url")
var ErrInvalidTickRate = errors.New("tick rate must be positive")

// PlaceholderToken is what a freshly generated .env carries before the user edits it.
const PlaceholderToken = "your-token-here"

const (
	DefaultURL              = "https://games-test.datsteam.dev"
	DefaultTickRate         = time.Second
	DefaultTimeout          = 10 * time.Second
	DefaultPollFailureLimit = 5
	DefaultListen           = "127.0.0.1:8080"
)

// Session is fixed for the lifetime of the process.
type Session struct {
	URL              string
	Token            string
	TickRate         time.Duration
	AutoReconnect    bool
	Timeout          time.Duration
	PollFailureLimit int
	Listen           string
}

func Default() Session {
	return Session{
		URL:              DefaultURL,
		Token:            os.Getenv("API_TOKEN"),
		TickRate:         DefaultTickRate,
		AutoReconnect:    true,
		Timeout:          DefaultTimeout,
		PollFailureLimit: DefaultPollFailureLimit,
		Listen:           DefaultListen,
	}
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" || s.Token == PlaceholderToken {
		return ErrMissingToken
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if s.TickRate <= 0 {
		return ErrInvalidTickRate
	}
	return nil
}

// BaseURL is the server url without a trailing slash.
func (s Session) BaseURL() string {
	return strings.TrimRight(s.URL, "/")
}

// LoadEnv reads the given .env files into the process environment. Missing
// files are skipped; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// EnvTemplate is a starting .env with every variable the process reads.
func EnvTemplate() string {
	d := Default()
	var b strings.Builder
	fmt.Fprintf(&b, "API_TOKEN=%s\n", PlaceholderToken)
	fmt.Fprintf(&b, "ARENA_URL=%s\n", d.URL)
	fmt.Fprintf(&b, "ARENA_TICK_RATE=%s\n", d.TickRate)
	fmt.Fprintf(&b, "ARENA_AUTO_RECONNECT=%t\n", d.AutoReconnect)
	fmt.Fprintf(&b, "ARENA_TIMEOUT=%s\n", d.Timeout)
	fmt.Fprintf(&b, "ARENA_POLL_FAILURE_LIMIT=%d\n", d.PollFailureLimit)
	fmt.Fprintf(&b, "ARENA_LISTEN=%s\n", d.Listen)
	return b.String()
}
