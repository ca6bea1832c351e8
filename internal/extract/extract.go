// Package extract calls the AI collaborator that turns pasted confirmation
// emails into structured order fields.
//
// The collaborator is best-effort by contract: every field of a Result may
// be missing or malformed, and nothing it returns is trusted for uniqueness
// or validation. Required-field validation happens in the form layer
// regardless of extraction success.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Result is the structured best-effort extraction from free email text.
type Result struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	ProductName    string   `json:"productName"`
	Items          []string `json:"items"`
	StoreName      string   `json:"storeName"`
	OrderReference string   `json:"orderReference"`
	Amount         float64  `json:"amount"`
	Currency       string   `json:"currency"`
	ContactInfo    string   `json:"contactInfo"`
}

// Extractor consumes raw pasted email text and returns a structured
// best-effort extraction.
//
// Implementations must honor ctx cancellation: when the caller abandons the
// paste-and-retry flow, the context is cancelled and a stale response is
// discarded rather than applied.
type Extractor interface {
	Extract(ctx context.Context, emailText string) (Result, error)
}

// ErrMissingAPIKey indicates no API key was configured for the collaborator.
var ErrMissingAPIKey = errors.New("extraction API key not configured")

// Client calls a Gemini-style generateContent endpoint.
type Client struct {
	Endpoint string // base URL, e.g. https://generativelanguage.googleapis.com/v1beta
	Model    string
	APIKey   string
	HTTP     *http.Client
}

// NewClient creates a Client with a 60-second request timeout.
func NewClient(endpoint, model, apiKey string) *Client {
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

const promptTemplate = `Analiza el siguiente texto de un correo electrónico de confirmación de compra y extrae los datos.
Genera un TÍTULO corto y descriptivo (máximo 3-5 palabras).
Extrae TODOS los productos individuales en una lista (array).
Busca el NÚMERO DE PEDIDO o REFERENCIA.
Busca información de contacto.

Texto del email:
"%s"
`

// responseSchema constrains the model to the fields the form understands.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"title":          map[string]any{"type": "STRING", "description": "Un título breve para identificar la compra."},
		"date":           map[string]any{"type": "STRING", "description": "La fecha de compra ISO 8601 (YYYY-MM-DD)"},
		"products":       map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}, "description": "Lista de nombres exactos de los productos comprados."},
		"storeName":      map[string]any{"type": "STRING", "description": "El nombre de la tienda"},
		"orderReference": map[string]any{"type": "STRING", "description": "ID del pedido"},
		"amount":         map[string]any{"type": "NUMBER", "description": "Importe total"},
		"currency":       map[string]any{"type": "STRING", "description": "Moneda (EUR, USD)"},
		"contactInfo":    map[string]any{"type": "STRING", "description": "Email o URL de soporte"},
	},
	"required": []string{"products", "amount", "title"},
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	ResponseSchema   any    `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Extract sends the email text to the model and coerces the JSON reply into
// a Result. Missing or malformed fields are tolerated and zeroed; only a
// missing key, transport failure, non-200 status or unusable reply body is
// an error.
func (c *Client) Extract(ctx context.Context, emailText string) (Result, error) {
	if c.APIKey == "" {
		return Result{}, ErrMissingAPIKey
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, emailText)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("encode extraction request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimSuffix(c.Endpoint, "/"), c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Result{}, fmt.Errorf("decode extraction response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Result{}, errors.New("extraction service returned no content")
	}

	return coerceResult(gr.Candidates[0].Content.Parts[0].Text)
}

// coerceResult parses the model's JSON text tolerantly: wrong types become
// zero values, the products array is flattened to strings, and the legacy
// flat product field is rebuilt as a bulleted list.
func coerceResult(text string) (Result, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Result{}, fmt.Errorf("extraction reply is not valid JSON: %w", err)
	}

	r := Result{
		Title:          stringValue(raw["title"]),
		Date:           stringValue(raw["date"]),
		StoreName:      stringValue(raw["storeName"]),
		OrderReference: stringValue(raw["orderReference"]),
		Amount:         numberValue(raw["amount"]),
		Currency:       stringValue(raw["currency"]),
		ContactInfo:    stringValue(raw["contactInfo"]),
	}

	if products, ok := raw["products"].([]any); ok {
		for _, p := range products {
			if s := stringValue(p); s != "" {
				r.Items = append(r.Items, s)
			}
		}
	}
	if len(r.Items) > 0 {
		bullets := make([]string, len(r.Items))
		for i, name := range r.Items {
			bullets[i] = "• " + name
		}
		r.ProductName = strings.Join(bullets, "\n")
	}

	return r, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}
