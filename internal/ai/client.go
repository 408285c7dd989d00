// Package ai contains the HTTP clients for the external AI providers: Groq
// for chat completions and Whisper transcription, Tavily for web search, and
// the Researcher that combines them to describe an AI tool.
package ai

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when a client has no API key.
var ErrNotConfigured = errors.New("ai: api key not configured")

// maxErrorBody caps how much of a failed response is kept in an APIError.
const maxErrorBody = 4 << 10

// Message is one chat message in the OpenAI-compatible format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// APIError describes a non-2xx response from a provider.
type APIError struct {
	Service string
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s request failed: %d - %s", e.Service, e.Status, e.Body)
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.log.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{}) { l.log.Infow(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.log.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{}) { l.log.Warnw(msg, kv...) }

// newHTTPClient returns a retrying client that retries connection errors,
// 429 and 5xx responses. The last response is handed back to the caller
// instead of being discarded so its status and body can be reported.
func newHTTPClient(log *zap.Logger) *retryablehttp.Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = 2 * time.Minute
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = leveledLogger{log: log.Sugar()}
	return c
}

// checkResponse turns a non-2xx response into an APIError. The body is
// closed in that case.
func checkResponse(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{Service: service, Status: resp.StatusCode, Body: string(b)}
}
