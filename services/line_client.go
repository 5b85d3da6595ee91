// services/line_client.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"fit-quest-system/models"
	"fit-quest-system/utils"
)

// LineAuthClient talks to the LINE platform to verify LIFF access tokens and
// fetch the owning profile.
type LineAuthClient struct {
	BaseURL string
	Client  *http.Client
}

type LineTokenInfo struct {
	Scope     string `json:"scope"`
	ClientID  string `json:"client_id"`
	ExpiresIn int64  `json:"expires_in"`
}

type LineProfile struct {
	UserID        string  `json:"userId"`
	DisplayName   string  `json:"displayName"`
	PictureURL    *string `json:"pictureUrl,omitempty"`
	StatusMessage *string `json:"statusMessage,omitempty"`
}

func NewLineAuthClient(baseURL string) *LineAuthClient {
	if baseURL == "" {
		baseURL = "https://api.line.me"
	}
	return &LineAuthClient{
		BaseURL: baseURL,
		Client:  utils.HTTPClient,
	}
}

// VerifyToken calls /oauth2/v2.1/verify on the LINE platform.
func (c *LineAuthClient) VerifyToken(accessToken string) (*LineTokenInfo, error) {
	endpoint := fmt.Sprintf("%s/oauth2/v2.1/verify?access_token=%s",
		c.BaseURL, url.QueryEscape(accessToken))

	resp, err := c.Client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("LINE /verify returned %d: %s", resp.StatusCode, string(body))
		return nil, models.NewUnauthorizedError("invalid or expired LINE access token")
	}

	var out LineTokenInfo
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.ExpiresIn <= 0 {
		return nil, models.NewUnauthorizedError("expired LINE access token")
	}

	return &out, nil
}

// GetProfile calls /v2/profile with the user's access token.
func (c *LineAuthClient) GetProfile(accessToken string) (*LineProfile, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/v2/profile", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("LINE /v2/profile returned %d: %s", resp.StatusCode, string(body))
		return nil, models.NewUnauthorizedError("failed to fetch LINE profile")
	}

	var out LineProfile
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ResolveIdentity verifies the token and returns the profile behind it.
func (c *LineAuthClient) ResolveIdentity(accessToken string) (*LineProfile, error) {
	if _, err := c.VerifyToken(accessToken); err != nil {
		return nil, err
	}
	return c.GetProfile(accessToken)
}
