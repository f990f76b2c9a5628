package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EvolutionClient is a thin client for the Evolution API (WhatsApp gateway).
// Routes follow the pattern {base_url}/message/{op}/{instance} with the
// apikey header.
type EvolutionClient struct {
	BaseURL  string
	ApiKey   string
	Instance string
}

// EvolutionAPIError carries the gateway's raw answer; the CRM never
// interprets provider error codes, it surfaces the body as-is.
type EvolutionAPIError struct {
	StatusCode int
	Body       string
}

func (e EvolutionAPIError) Error() string {
	return fmt.Sprintf("evolution api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (c EvolutionClient) post(ctx context.Context, path string, body any) error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("evolution base_url não configurado")
	}
	url := fmt.Sprintf("%s/%s/%s", base, strings.TrimPrefix(path, "/"), strings.TrimSpace(c.Instance))

	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", strings.TrimSpace(c.ApiKey))
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return EvolutionAPIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// SendText envia uma mensagem de texto simples.
func (c EvolutionClient) SendText(ctx context.Context, number string, text string) error {
	return c.post(ctx, "message/sendText", map[string]any{
		"number": number,
		"text":   text,
	})
}

// SendMedia envia mídia em base64 com legenda (caption).
// mediaType segue o vocabulário da Evolution: image, video, document...
func (c EvolutionClient) SendMedia(ctx context.Context, number, mediaType, mediaBase64, mimeType, caption string) error {
	return c.post(ctx, "message/sendMedia", map[string]any{
		"number":    number,
		"mediatype": mediaType,
		"media":     mediaBase64,
		"mimetype":  mimeType,
		"caption":   caption,
	})
}
