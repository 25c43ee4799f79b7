// Package transcribe uploads a captured WAV file to the Groq transcription
// API and maps the outcome onto a small set of typed results.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "whisper-large-v3"
	DefaultTimeout = 30 * time.Second

	// A canonical WAV header with no samples is 44 bytes. Anything at or
	// below that captured no audio.
	wavHeaderSize = 44
)

var (
	ErrEmptyAudio = errors.New("recording is empty, nothing to transcribe")
	ErrNoText     = errors.New("no speech recognized in the recording")
	ErrNetwork    = errors.New("could not reach the transcription API")
)

// APIError is a non-200 response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transcription API error (HTTP %d): %s", e.Status, e.Message)
}

type Config struct {
	APIKey   string
	Model    string
	Language string
	BaseURL  string
	Timeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

type Client struct {
	api *openai.Client
	cfg Config
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	// The request timeout is separate from the recording timeout: a stuck
	// upload must not hold the pipeline for minutes.
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api: openai.NewClientWithConfig(clientConfig),
		cfg: cfg,
	}
}

// Transcribe uploads the audio file and returns the recognized text.
// Empty recordings short-circuit to ErrEmptyAudio without a network call.
// Exactly one upload attempt is made: retrying against a paid API re-bills
// the user, so failures are surfaced instead.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyAudio, err)
	}
	if info.Size() <= wavHeaderSize {
		return "", fmt.Errorf("%w (%d bytes)", ErrEmptyAudio, info.Size())
	}

	req := openai.AudioRequest{
		Model:    c.cfg.Model,
		FilePath: audioPath,
		Language: c.cfg.Language,
		Format:   openai.AudioResponseFormatJSON,
	}

	start := time.Now()
	resp, err := c.api.CreateTranscription(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("Transcribe: request failed after %v: %v", elapsed, err)
		return "", mapError(ctx, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		// A 200 with no text means the audio was unintelligible, which is a
		// different situation from a failed request.
		return "", ErrNoText
	}

	log.Printf("Transcribe: %d bytes transcribed in %v", info.Size(), elapsed)
	return text, nil
}

func mapError(ctx context.Context, err error) error {
	// Cancellation or a deadline on the caller's context belongs to the
	// caller. A DeadlineExceeded without one can only be the HTTP client's
	// own timeout, which is a network failure like any other non-response.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{Status: apiErr.HTTPStatusCode, Message: msg}
	}

	// Non-200 with a body the client could not parse into the structured
	// error shape. The status code is still meaningful.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Status: reqErr.HTTPStatusCode, Message: "request failed"}
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
