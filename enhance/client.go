// Package enhance rewrites free-text report fields through a
// chat-completions endpoint. The contract is fail-soft: whatever goes
// wrong, the caller gets its original text back, never an error.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"release-service/config"
	"release-service/form"

	"github.com/apex/log"
)

const systemPrompt = "Você é um assistente especializado em redação de boletins de ocorrência militares. Seu tom deve ser formal, imparcial e técnico."

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		client:  &http.Client{Timeout: cfg.EnhanceTimeout},
	}
}

// Rewrite returns the polished version of text, or text itself when
// the credential is missing or the call fails in any way.
func (c *Client) Rewrite(ctx context.Context, text string, field form.Field) string {
	if c.apiKey == "" {
		log.Warn("enhance.skip.no_api_key")
		return text
	}

	kind := "histórico"
	if field == form.FieldProductivity {
		kind = "produtividade"
	}

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role: "user",
				Content: fmt.Sprintf("Melhore o seguinte texto de %s policial, tornando-o mais formal, direto e técnico no padrão da PMMG. Mantenha os fatos mas use terminologia militar adequada: \n\n%s",
					kind, text),
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		log.Errorf("Failed to marshal enhancement request: %v", err)
		return text
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		log.Errorf("Failed to create enhancement request: %v", err)
		return text
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("Enhancement call failed: %v", err)
		return text
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Enhancement API returned status %d", resp.StatusCode)
		return text
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		log.Errorf("Failed to decode enhancement response: %v", err)
		return text
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		log.Warn("enhance.empty_response")
		return text
	}
	return chatResp.Choices[0].Message.Content
}
