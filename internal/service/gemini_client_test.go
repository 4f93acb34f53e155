package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"demosim/internal/model"
)

func TestGeminiCompleteMapsRolesAndParsesReply(t *testing.T) {
	var captured struct {
		SystemInstruction struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiReply("Understood, let's continue."))
	}))
	defer srv.Close()

	client := NewGeminiClient(liveAIConfig(srv.URL), zap.NewNop())
	now := time.Now()
	history := []model.ConversationMessage{
		model.NewMessage(model.RoleAgent, "How are your mornings?", now, nil),
		model.NewMessage(model.RoleUser, "Busy, mostly.", now, nil),
	}

	text, err := client.Complete(context.Background(), "participant-model", "You are a participant.", history, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "Understood, let's continue.", text)

	require.Len(t, captured.Contents, 2)
	// The caller speaks as the user role, so its turns map to "model"
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	require.NotEmpty(t, captured.SystemInstruction.Parts)
	assert.Equal(t, "You are a participant.", captured.SystemInstruction.Parts[0].Text)
}

func TestGeminiCompleteSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewGeminiClient(liveAIConfig(srv.URL), zap.NewNop())
	_, err := client.Complete(context.Background(), "m", "prompt", nil, model.RoleAgent)
	assert.Error(t, err)
}

func TestGeminiCompleteRejectsEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	client := NewGeminiClient(liveAIConfig(srv.URL), zap.NewNop())
	_, err := client.Complete(context.Background(), "m", "prompt", nil, model.RoleAgent)
	assert.Error(t, err)
}
