// Package transcription calls the remote speech-to-text capability.
package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is the remote transcription capability the pipeline depends on.
type Client interface {
	// Transcribe sends one media file and returns its transcript text.
	Transcribe(ctx context.Context, path, model string) (string, error)
}

// OpenAIClient transcribes media through the OpenAI audio API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenAIClient builds a client with a per-call HTTP timeout.
func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewOpenAIClientForTests builds a client against an injected endpoint.
func NewOpenAIClientForTests(apiKey, baseURL string, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenAIClient{apiKey: apiKey, baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Transcribe uploads the file as multipart form data and requests a
// plain-text response, so the body is the transcript itself.
func (c *OpenAIClient) Transcribe(ctx context.Context, path, model string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("transcription: open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model", model); err != nil {
		return "", fmt.Errorf("transcription: write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("transcription: write format field: %w", err)
	}

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("transcription: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("transcription: read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("transcription: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("transcription: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcription: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return string(payload), nil
}
