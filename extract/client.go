package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"dealer-scraper/utils"
)

// Client calls an OpenAI-compatible chat-completions endpoint to pull
// structured vehicle pricing out of rendered page text. The dealer sites
// that lay prices out in free-form marketing copy have no stable selectors,
// so extraction is delegated to a model with a strict output contract.
type Client struct {
	http   *resty.Client
	model  string
	logger *utils.Logger
}

// NewClient builds an extraction client for the given endpoint.
func NewClient(endpoint, apiKey, model string, logger *utils.Logger) *Client {
	http := resty.New().
		SetBaseURL(endpoint).
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http, model: model, logger: logger}
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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You extract vehicle pricing from car-dealer web pages.
Respond with a JSON array only — no prose, no markdown fences. Each element:
{"brand": string|null, "model": string|null, "version": string|null,
 "precio_lista": string|null, "bono_marca": string|null,
 "bono_financiamiento": string|null}
Prices and bonuses must be digit-only strings (strip $ and thousands dots).
Use null for anything not present on the page. Do not repeat versions.`

// ExtractVersions sends rendered page text plus a dealer-specific
// instruction and returns the parsed records. The response must satisfy the
// schema exactly; a malformed reply is an error, never a guess.
func (c *Client) ExtractVersions(ctx context.Context, instruction, pageText string) ([]Record, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instruction + "\n\nPAGE TEXT:\n" + pageText},
		},
	}

	var res chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&res).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("extract: request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("extract: endpoint returned %s: %s", resp.Status(), resp.String())
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("extract: response has no choices")
	}

	records, err := ParseRecords(res.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("[extract] rejected model output: %v", err)
		return nil, err
	}
	return records, nil
}
