package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/motoyard/motoyard-api/pkg/circuitbreaker"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

const (
	DefaultBaseURL = "https://api.linkedin.com/v2"

	providerName = "linkedin"
)

// Client publishes organization posts through the LinkedIn UGC API.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "linkedin",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

type ugcPostRequest struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

type shareContent struct {
	ShareCommentary struct {
		Text string `json:"text"`
	} `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type shareMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type ugcPostResponse struct {
	ID string `json:"id"`
}

// PublishPost publishes a text post (optionally with a linked image) on
// behalf of the organization URN. Returns the UGC post id.
func (c *Client) PublishPost(ctx context.Context, accessToken, orgURN, text, imageURL, idempotencyKey string) (string, error) {
	post := ugcPostRequest{
		Author:         orgURN,
		LifecycleState: "PUBLISHED",
	}
	post.SpecificContent.ShareContent.ShareCommentary.Text = text
	post.SpecificContent.ShareContent.ShareMediaCategory = "NONE"
	if imageURL != "" {
		post.SpecificContent.ShareContent.ShareMediaCategory = "ARTICLE"
		post.SpecificContent.ShareContent.Media = []shareMedia{
			{Status: "READY", OriginalURL: imageURL},
		}
	}
	post.Visibility.MemberNetworkVisibility = "PUBLIC"

	body, err := json.Marshal(post)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp ugcPostResponse
	err = c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ugcPosts", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			return apperrors.Upstream(providerName, err)
		}
		defer httpResp.Body.Close()

		respBody, _ := io.ReadAll(httpResp.Body)

		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return apperrors.Upstream(providerName,
				fmt.Errorf("unexpected status %d body=%q", httpResp.StatusCode, string(respBody)))
		}

		if err := json.Unmarshal(respBody, &resp); err != nil {
			return apperrors.Upstream(providerName,
				fmt.Errorf("failed to decode response: %w body=%q", err, string(respBody)))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
