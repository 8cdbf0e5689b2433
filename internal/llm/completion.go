package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxRequestSize = 2 * 1024 * 1024 // 2MB total JSON payload

// Complete sends one prompt upstream and returns the completion text.
// Transient failures are retried inside; the error distinguishes
// ErrMaxRetriesExceeded from ErrTimeout for the caller's logs.
func (c *client) Complete(parentCtx context.Context, req *CompletionRequest) (string, error) {
	start := time.Now()

	if req == nil {
		return "", fmt.Errorf("llmclient: request is nil")
	}
	if req.Prompt == "" {
		return "", fmt.Errorf("llmclient: prompt is empty")
	}

	c.logger.Debug("llm request starting",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_bytes", len(req.Prompt)),
	)

	pReq := providerChatRequest{
		Model: c.cfg.Model,
		Messages: []providerChatMessage{
			{Role: roleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	bodyBytes, err := json.Marshal(pReq)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	if len(bodyBytes) > maxRequestSize {
		return "", fmt.Errorf(
			"llmclient: request too large (%d bytes, max %d)",
			len(bodyBytes), maxRequestSize,
		)
	}

	url := c.cfg.BaseURL + "/chat/completions"

	// doOnce builds a fresh *http.Request per attempt; each attempt gets
	// its own per-attempt timeout inside the caller's deadline.
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		attemptCtx := ctx
		var cancel context.CancelFunc = func() {}
		if c.cfg.UpstreamTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.UpstreamTimeout)
		}
		httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("llmclient: build HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			cancel()
			return nil, err
		}
		// Tie the attempt context to the body's lifetime.
		resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	resp, err := c.doWithRetry(parentCtx, bodyBytes, doOnce)
	if err != nil {
		c.logger.Error("llm request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}
	defer resp.Body.Close()

	// Non-retryable upstream statuses (other 4xx) land here untouched.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var perr providerErrorResponse
		if err := json.Unmarshal(body, &perr); err == nil && perr.Error.Message != "" {
			c.logger.Error("llm provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", perr.Error.Type),
				zap.String("error_message", perr.Error.Message),
			)
			return "", fmt.Errorf("llmclient: upstream %d: %s (%s)",
				resp.StatusCode, perr.Error.Message, perr.Error.Type)
		}

		c.logger.Error("llm upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 200)),
		)
		return "", fmt.Errorf("llmclient: upstream %d: %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	var pResp providerChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return "", fmt.Errorf("llmclient: decode upstream response: %w", err)
	}

	if len(pResp.Choices) == 0 {
		c.logger.Error("llm provider returned no choices",
			zap.String("model", c.cfg.Model),
		)
		return "", fmt.Errorf("llmclient: provider returned no choices")
	}

	usage := providerUsage{}
	if pResp.Usage != nil {
		usage = *pResp.Usage
	}

	c.logger.Info("llm request completed",
		zap.String("model", pResp.Model),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return pResp.Choices[0].Message.Content, nil
}

// cancelReadCloser cancels the attempt context when the body is closed.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// truncate limits string length for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
