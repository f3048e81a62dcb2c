package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
)

// ExtractedFields are best-effort guesses read off a receipt or invoice
// image. They prefill an application form; the user reviews every value
// before submitting.
type ExtractedFields struct {
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Vendor      *string  `json:"vendor,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type Config struct {
	APIURL         string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Client calls a generative completion endpoint to read document images.
type Client struct {
	apiURL         string
	apiKey         string
	model          string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiURL:         config.APIURL,
		apiKey:         config.APIKey,
		model:          config.Model,
		requestTimeout: timeout,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

func (c *Client) Enabled() bool {
	return c.apiURL != ""
}

const extractionPrompt = `Read this document image and answer with a single JSON object,
no markdown, with these keys: amount (number, the total amount),
date (string, YYYY-MM-DD), vendor (string), description (string).
Use null for anything you cannot read.`

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract sends the document to the completion endpoint and maps its answer
// to field guesses.
func (c *Client) Extract(ctx context.Context, fileBytes []byte, mimeType string) (*ExtractedFields, error) {
	if !c.Enabled() {
		return nil, internal.NewValidationError("document extraction is not configured", internal.ErrCodeOCRFailed)
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: extractionPrompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(fileBytes),
				}},
			},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.apiURL, "/"), c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("extraction request failed", "error", err)
		return nil, internal.NewInternalError("document extraction failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("extraction endpoint returned error", "status_code", resp.StatusCode)
		return nil, internal.NewInternalError(
			fmt.Sprintf("extraction endpoint returned status %d", resp.StatusCode), nil)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, internal.NewInternalError("failed to decode extraction response", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, internal.NewInternalError("extraction returned no candidates", nil)
	}

	fields, err := parseFields(genResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		c.logger.Warn("could not parse extraction answer", "error", err)
		return nil, internal.NewInternalError("could not parse extraction answer", err)
	}

	c.logger.Info("document fields extracted",
		"has_amount", fields.Amount != nil,
		"has_date", fields.Date != nil,
		"has_vendor", fields.Vendor != nil)
	return fields, nil
}

// parseFields tolerates markdown fences around the JSON answer.
func parseFields(answer string) (*ExtractedFields, error) {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")
	answer = strings.TrimSpace(answer)

	var fields ExtractedFields
	if err := json.Unmarshal([]byte(answer), &fields); err != nil {
		return nil, err
	}
	return &fields, nil
}
