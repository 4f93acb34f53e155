package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"demosim/internal/config"
	"demosim/internal/model"
)

// GeminiClient wraps the Gemini text-completion API.
// Any rejection from the API surfaces as a plain error; callers decide whether
// to fall back to the deterministic path.
type GeminiClient struct {
	config *config.AIConfig
	client *http.Client
	logger *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg *config.AIConfig, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		logger: logger,
	}
}

// Enabled returns true if the API is configured and not explicitly disabled
func (c *GeminiClient) Enabled() bool {
	return c.config.IsEnabled()
}

// Complete generates one text completion from a system prompt and a role-tagged
// history. selfRole marks which transcript role the model is speaking as; those
// turns map to Gemini's "model" role and the other side maps to "user".
func (c *GeminiClient) Complete(ctx context.Context, modelName, systemPrompt string, history []model.ConversationMessage, selfRole model.MessageRole) (string, error) {
	contents := make([]map[string]interface{}, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == selfRole {
			role = "model"
		}
		contents = append(contents, map[string]interface{}{
			"role": role,
			"parts": []map[string]string{
				{"text": msg.Content},
			},
		})
	}

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{
				{"text": systemPrompt},
			},
		},
		"contents": contents,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(modelName), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("gemini call failed",
			zap.Int("status", resp.StatusCode),
			zap.String("model", modelName))
		return "", fmt.Errorf("gemini API error %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
