package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/isaacchin12/c8-techJam/model"
)

// ErrBackendTimeout marks a request that exceeded the client timeout.
var ErrBackendTimeout = errors.New("generation backend timed out")

// Config holds the generation backend settings
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxAttempts int
	Timeout     time.Duration
	FormatJSON  bool
}

// DefaultConfig returns settings for a local Ollama backend
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:11434",
		Model:       "llama3",
		Temperature: 0.1,
		MaxTokens:   800,
		MaxAttempts: 3,
		Timeout:     60 * time.Second,
		FormatJSON:  true,
	}
}

// Client streams structured answers from an Ollama-compatible backend
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new generation client. A nil config falls back to
// DefaultConfig.
func NewClient(config *Config, logger *slog.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// FragmentFunc receives response fragments as they arrive from the backend
type FragmentFunc func(fragment string)

// Generation states. A generation run walks composing -> streaming ->
// parsing and ends in valid, or loops through retry until the attempt
// budget is exhausted.
type generationState int

const (
	stateComposing generationState = iota
	stateStreaming
	stateParsing
	stateValid
	stateRetry
	stateExhausted
)

// Generate streams a completion for the prompt and parses it into a
// structured answer. Responses that fail parsing or the validation gate are
// retried up to MaxAttempts times in total. When every attempt fails but at
// least one response arrived, the last response is returned as a
// best-effort answer instead of an error. onFragment may be nil.
func (c *Client) Generate(ctx context.Context, prompt string, onFragment FragmentFunc) (*model.StructuredAnswer, error) {
	state := stateComposing
	attempts := 0

	var answer *model.StructuredAnswer
	var lastRaw string
	var lastErr error

	for {
		switch state {
		case stateComposing:
			if attempts >= c.config.MaxAttempts {
				state = stateExhausted
				continue
			}
			attempts++
			state = stateStreaming

		case stateStreaming:
			raw, err := c.stream(ctx, prompt, onFragment)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("Generation request failed", "attempt", attempts, "error", err)
				lastErr = err
				state = stateRetry
				continue
			}
			lastRaw = raw
			state = stateParsing

		case stateParsing:
			parsed, ok := ParseAnswer(lastRaw)
			if ok && parsed.Valid() {
				answer = parsed
				state = stateValid
				continue
			}
			c.logger.Warn("Response failed validation, retrying", "attempt", attempts)
			state = stateRetry

		case stateValid:
			return answer, nil

		case stateRetry:
			state = stateComposing

		case stateExhausted:
			if lastRaw != "" {
				c.logger.Warn("Attempts exhausted, returning best-effort answer", "attempts", attempts)
				return BestEffortAnswer(lastRaw), nil
			}
			if lastErr != nil {
				return nil, helper.NewError("generate", lastErr)
			}
			return nil, helper.NewError("generate", fmt.Errorf("no response from backend"))
		}
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Format      string  `json:"format,omitempty"`
	Stream      bool    `json:"stream"`
}

type generateFragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// stream sends the prompt and accumulates the newline-delimited JSON
// fragments the backend produces until it reports done
func (c *Client) stream(ctx context.Context, prompt string, onFragment FragmentFunc) (string, error) {
	request := generateRequest{
		Model:       c.config.Model,
		Prompt:      prompt,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      true,
	}
	if c.config.FormatJSON {
		request.Format = "json"
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", helper.NewError("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", helper.NewError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", helper.NewError("send request", wrapTimeout(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", helper.NewError("send request", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, message))
	}

	var output bytes.Buffer
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		fragment := generateFragment{}
		err := json.Unmarshal(line, &fragment)
		if err != nil {
			return "", helper.NewError("decode fragment", err)
		}
		if fragment.Error != "" {
			return "", helper.NewError("decode fragment", fmt.Errorf("backend error: %s", fragment.Error))
		}

		if fragment.Response != "" {
			output.WriteString(fragment.Response)
			if onFragment != nil {
				onFragment(fragment.Response)
			}
		}
		if fragment.Done {
			break
		}
	}

	err = scanner.Err()
	if err != nil {
		return "", helper.NewError("read stream", wrapTimeout(err))
	}

	return output.String(), nil
}

// wrapTimeout tags network timeout errors with ErrBackendTimeout so callers
// can distinguish a slow backend from other transport failures.
func wrapTimeout(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return err
}
