package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sqlchat/internal/errs"
	"sqlchat/internal/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

// systemPrompt frames the model as a SQL generator. The schema and question
// are injected into the user message.
const systemPrompt = `You are a SQL expert. Given a database schema and a question, write a SQL query that answers the question.

Instructions:
- Use only the tables and columns provided in the schema
- Use valid syntax for the target database
- For any aggregated results, use clear aliases
- Do not use placeholders for table names or column names
- Your response must contain only the SQL query, nothing else`

// OpenAI is an Oracle backed by an OpenAI-compatible chat completion API.
type OpenAI struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewOpenAI creates the client. The returned Oracle is safe for concurrent
// use.
func NewOpenAI(cfg Config, log *logger.Logger) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.New(nil)
	}
	return &OpenAI{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateSQL asks the model for a SQL statement answering the question
// against the given schema description. The raw completion is cleaned of
// markdown fences before being returned.
func (o *OpenAI) GenerateSQL(ctx context.Context, question, schemaDesc string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "question is empty")
	}

	userMsg := fmt.Sprintf("Database Schema:\n%s\n\nUser Question: %s\n\nSQL Query:", schemaDesc, question)

	body, err := json.Marshal(chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMsg},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrKindOracleFailed, "failed to encode completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(o.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindOracleFailed, "failed to build completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindOracleFailed, "completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindOracleFailed, "failed to read completion response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errs.Wrap(errs.ErrKindOracleFailed, "failed to decode completion response", err)
	}

	if parsed.Error != nil {
		return "", errs.Newf(errs.ErrKindOracleFailed, "completion API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Newf(errs.ErrKindOracleFailed, "completion API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errs.New(errs.ErrKindOracleFailed, "completion API returned no choices")
	}

	sql := CleanSQL(parsed.Choices[0].Message.Content)
	if sql == "" {
		return "", errs.New(errs.ErrKindOracleFailed, "completion API returned an empty query")
	}

	o.log.With().Str("model", o.cfg.Model).Any("elapsed", time.Since(start).String()).Logger().Debug("SQL generated")
	return sql, nil
}

// CleanSQL strips the markdown fences chat models like to wrap code in and
// trims surrounding whitespace.
func CleanSQL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```sql")
		s = strings.TrimPrefix(s, "```SQL")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
