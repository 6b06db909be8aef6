// Package whisper - клиент локального HTTP сервера Whisper.
//
// Клиент хранит только адрес сервиса и модель и не делает повторов:
// политика перезапуска живёт в записи сегментов.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"livesub/internal/audio"
)

const (
	DefaultURL     = "http://localhost:5001"
	DefaultModel   = "base"
	DefaultTimeout = 60 * time.Second
	// HealthTimeout ограничивает проверку живости сервиса.
	HealthTimeout = 3 * time.Second

	// FieldAudio и UploadName - формат multipart запроса /translate.
	FieldAudio = "audio"
	FieldModel = "model"
	UploadName = "audio.webm"
)

// ErrServiceUnavailable - сервис не ответил на проверку живости.
var ErrServiceUnavailable = errors.New("whisper server not running")

// ServiceError - сервис вернул не-2xx ответ.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("Server error: %d - %s", e.Status, e.Body)
}

// Config конфигурация клиента.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		URL:     DefaultURL,
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
}

// Client отправляет сегменты на сервер распознавания.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	model string
}

// New создаёт клиента.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = DefaultURL
	}

	return &Client{
		baseURL: url,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL возвращает адрес сервиса.
func (c *Client) URL() string {
	return c.baseURL
}

// Model возвращает модель, передаваемую серверу.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel меняет модель для следующих сегментов.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// Health проверяет живость сервиса через GET /health.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// translateResponse ответ POST /translate.
type translateResponse struct {
	Text     string            `json:"text"`
	Segments []json.RawMessage `json:"segments,omitempty"`
}

// Translate отправляет один сегмент и возвращает результат.
// Любой исход (текст, пустой текст, ошибка) различим по Result.Outcome.
func (c *Client) Translate(ctx context.Context, seg audio.Segment) Result {
	if err := c.Health(ctx); err != nil {
		return Failed(seg.Label, err)
	}

	text, err := c.submit(ctx, seg)
	if err != nil {
		return Failed(seg.Label, err)
	}
	return Succeeded(seg.Label, text)
}

func (c *Client) submit(ctx context.Context, seg audio.Segment) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile(FieldAudio, UploadName)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(seg.Payload); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if model := c.Model(); model != "" {
		if err := mw.WriteField(FieldModel, model); err != nil {
			return "", fmt.Errorf("write model: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Printf("Whisper: отправка сегмента #%d (%d байт)", seg.Seq, seg.Size())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &ServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	log.Printf("Whisper: сегмент #%d за %v", seg.Seq, time.Since(start).Round(time.Millisecond))
	return result.Text, nil
}
