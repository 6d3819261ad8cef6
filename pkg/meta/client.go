package meta

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
	DefaultBaseURL = "https://graph.facebook.com/v19.0"

	providerName = "meta"
)

// Client talks to the Meta Graph API: WhatsApp Cloud sends plus Facebook
// page and Instagram publishing.
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
			Name:        "meta",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type sendMessageRequest struct {
	MessagingProduct string            `json:"messaging_product"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *textPayload      `json:"text,omitempty"`
	Template         *templatePayload  `json:"template,omitempty"`
}

type textPayload struct {
	Body string `json:"body"`
}

type templatePayload struct {
	Name     string `json:"name"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

type sendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a free-form WhatsApp text message. Returns the provider
// message id.
func (c *Client) SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) (string, error) {
	req := sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	}
	return c.sendMessage(ctx, accessToken, phoneNumberID, req)
}

// SendTemplate sends a pre-approved WhatsApp template message.
func (c *Client) SendTemplate(ctx context.Context, accessToken, phoneNumberID, to, templateName, language string) (string, error) {
	tmpl := &templatePayload{Name: templateName}
	tmpl.Language.Code = language

	req := sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         tmpl,
	}
	return c.sendMessage(ctx, accessToken, phoneNumberID, req)
}

func (c *Client) sendMessage(ctx context.Context, accessToken, phoneNumberID string, payload sendMessageRequest) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)

	var resp sendMessageResponse
	if err := c.post(ctx, url, accessToken, "", payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Messages) == 0 {
		return "", apperrors.Upstream(providerName, fmt.Errorf("missing message id in response"))
	}
	return resp.Messages[0].ID, nil
}

type pagePostRequest struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

// PublishPagePost publishes text (optionally with a photo) to a Facebook
// page feed. Returns the post id.
func (c *Client) PublishPagePost(ctx context.Context, accessToken, pageID, message, imageURL, idempotencyKey string) (string, error) {
	endpoint := "feed"
	if imageURL != "" {
		endpoint = "photos"
	}
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, pageID, endpoint)

	var resp idResponse
	err := c.post(ctx, url, accessToken, idempotencyKey, pagePostRequest{
		Message: message,
		URL:     imageURL,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

type igContainerRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type igPublishRequest struct {
	CreationID string `json:"creation_id"`
}

// PublishInstagramPost runs the two-step Instagram publish: create a media
// container, then publish it.
func (c *Client) PublishInstagramPost(ctx context.Context, accessToken, instagramID, caption, imageURL, idempotencyKey string) (string, error) {
	var container idResponse
	err := c.post(ctx,
		fmt.Sprintf("%s/%s/media", c.baseURL, instagramID),
		accessToken, idempotencyKey,
		igContainerRequest{ImageURL: imageURL, Caption: caption},
		&container,
	)
	if err != nil {
		return "", err
	}

	var published idResponse
	err = c.post(ctx,
		fmt.Sprintf("%s/%s/media_publish", c.baseURL, instagramID),
		accessToken, idempotencyKey,
		igPublishRequest{CreationID: container.ID},
		&published,
	)
	if err != nil {
		return "", err
	}
	return published.ID, nil
}

func (c *Client) post(ctx context.Context, url, accessToken, idempotencyKey string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return apperrors.Upstream(providerName, err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var ge graphError
			if err := json.Unmarshal(respBody, &ge); err == nil && ge.Error.Message != "" {
				return apperrors.Upstream(providerName,
					fmt.Errorf("status %d: %s", resp.StatusCode, ge.Error.Message))
			}
			return apperrors.Upstream(providerName,
				fmt.Errorf("unexpected status %d body=%q", resp.StatusCode, string(respBody)))
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return apperrors.Upstream(providerName,
					fmt.Errorf("failed to decode response: %w body=%q", err, string(respBody)))
			}
		}
		return nil
	})
}
