package config

import "os"

// GeminiModels defines which Gemini models to use for different roles
type GeminiModels struct {
	// Interviewer drives the moderator side of the conversation (needs to be fast)
	Interviewer string `json:"interviewer"`

	// Participant generates persona responses (needs to be fast)
	Participant string `json:"participant"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
	Disabled  bool         `json:"disabled"` // Force the deterministic path even with a key present
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Interviewer: getEnvOrDefault("GEMINI_MODEL_INTERVIEWER", "gemini-2.0-flash"),
			Participant: getEnvOrDefault("GEMINI_MODEL_PARTICIPANT", "gemini-2.0-flash"),
		},
		TimeoutMS: 15000, // 15 second default timeout
		Disabled:  os.Getenv("GEMINI_DISABLED") == "true",
	}
}

// IsEnabled returns true if the AI API is configured and not explicitly disabled
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != "" && !c.Disabled
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
