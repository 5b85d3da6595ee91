// services/quest_generator.go
package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"fit-quest-system/models"
	"fit-quest-system/utils"
)

// GeminiClient calls the Google Generative Language REST API for quest text
// and avatar images.
type GeminiClient struct {
	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string
	Client     *http.Client
}

func NewGeminiClient(baseURL, apiKey string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		TextModel:  "gemini-1.5-flash",
		ImageModel: "gemini-2.0-flash-preview-image-generation",
		Client: utils.GenerationHTTPClient,
	}
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) generateContent(model, prompt string) (*geminiResponse, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, model, c.APIKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, models.NewGenerationError("content generator unreachable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Gemini %s returned %d: %s", model, resp.StatusCode, string(body))
		return nil, models.NewGenerationError(
			fmt.Sprintf("content generator returned %d", resp.StatusCode), nil)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, models.NewGenerationError("unparseable generator response", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, models.NewGenerationError("generator returned no candidates", nil)
	}
	return &out, nil
}

// GenerateQuestContent sends the quest prompt and returns the raw free-text
// reply. Parsing into structured fields is the parser's job.
func (c *GeminiClient) GenerateQuestContent(prompt string) (string, error) {
	out, err := c.generateContent(c.TextModel, prompt)
	if err != nil {
		return "", err
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateAvatarImage asks the image model for an avatar and returns the raw
// image bytes with their mime type.
func (c *GeminiClient) GenerateAvatarImage(prompt string) ([]byte, string, error) {
	out, err := c.generateContent(c.ImageModel, prompt)
	if err != nil {
		return nil, "", err
	}
	for _, part := range out.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, "", models.NewGenerationError("invalid image payload", err)
		}
		return data, part.InlineData.MimeType, nil
	}
	return nil, "", models.NewGenerationError("generator returned no image", nil)
}

// BuildQuestPrompt formats the generation prompt from the user's profile and
// the stated purpose. The reply format must match what the parser expects.
func BuildQuestPrompt(user *models.User, purpose string) string {
	if purpose == "" {
		purpose = "improve general fitness"
	}
	return fmt.Sprintf(
		`You are a fitness coach in an RPG-style health app.
Create one small daily activity quest for this user:
- Age: %d, Gender: %s, Height: %d cm, Weight: %d kg
- Purpose: %s

Reply with exactly these labeled lines and nothing else:
Title: <short quest name, under 50 characters>
Description: <one sentence, under 80 characters>
Health Points: <number between 2 and 10>
Energy Points: <number between 2 and 10>
Goal: <number of times to perform the activity, between 2 and 5>
Experience Points: <number between 5 and 10>`,
		user.Age, user.Gender, user.Height, user.Weight, purpose)
}
