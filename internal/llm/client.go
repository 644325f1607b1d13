package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client — клиент reasoning-сервиса.
//
// Воркеры и LLM-оракул получают Client через DI; в mock-режиме
// используется Static, в production — HTTPClient.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Default configuration values.
const (
	defaultModel   = "gpt-4-turbo-preview"
	defaultTimeout = 60 * time.Second
)

// HTTPClient — клиент chat-completions API по HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// Config — конфигурация HTTPClient.
type Config struct {
	// BaseURL — адрес API, например "https://api.openai.com".
	BaseURL string

	// APIKey — ключ авторизации (Bearer).
	APIKey string

	// Model — имя модели (default: gpt-4-turbo-preview).
	Model string

	// Timeout — таймаут одного запроса (default: 60s).
	Timeout time.Duration
}

// NewHTTPClient создаёт новый HTTPClient.
func NewHTTPClient(cfg Config) *HTTPClient {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// FromEnv создаёт HTTPClient из переменных окружения
// LLM_BASE_URL, LLM_API_KEY, LLM_MODEL.
// Возвращает nil, если LLM_BASE_URL не задан (mock-режим).
func FromEnv() *HTTPClient {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		return nil
	}

	return NewHTTPClient(Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   os.Getenv("LLM_MODEL"),
	})
}

// Форматы chat-completions API.
type (
	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}

	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
)

// Complete отправляет system+user сообщения и возвращает текст ответа.
func (c *HTTPClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// Static — детерминированный клиент для тестов и mock-режима.
// Возвращает заранее заданный ответ либо Err.
type Static struct {
	// Response — ответ на любой запрос.
	Response string

	// Err — если задан, Complete возвращает эту ошибку.
	Err error

	// Calls — количество вызовов Complete.
	Calls int
}

// Complete возвращает Static.Response.
func (s *Static) Complete(_ context.Context, _, _ string) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
