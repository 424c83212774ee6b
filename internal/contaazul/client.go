// Conta Azul is the accounting system tenants connect Sigelo to.
// Completed events are pushed as sales. The client is a thin OAuth2
// pass-through: token acquisition, caching and one sync call.
package contaazul

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/cache"
	"github.com/xsoluti-sigelo/sigelo/internal/funcs"
)

const tokenCacheKey = "contaazul:access_token"

type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	cache        *cache.Cache
	httpClient   *http.Client
}

func New(clientID, clientSecret, tokenURL, apiURL string, cache *cache.Cache) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		apiURL:       apiURL,
		cache:        cache,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken returns a cached token when one is still live, otherwise
// runs the client-credentials grant and caches the result slightly
// short of its expiry.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.cache != nil {
		token, found, err := c.cache.Get(tokenCacheKey)
		if err == nil && found {
			return token, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("conta azul token endpoint returned %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}

	if c.cache != nil && token.ExpiresIn > 60 {
		ttl := time.Duration(token.ExpiresIn-60) * time.Second
		_ = c.cache.Set(tokenCacheKey, token.AccessToken, ttl)
	}

	return token.AccessToken, nil
}

type Sale struct {
	ExternalID     string `json:"external_id"`
	Customer       string `json:"customer"`
	Description    string `json:"description"`
	AmountCentavos int64  `json:"amount_centavos"`
	IssuedAt       string `json:"issued_at"`
}

// NewSale builds the sale payload for a completed rental event.
func NewSale(eventID, clientName, venue string, budgetCentavos int64, endsAt time.Time) *Sale {
	return &Sale{
		ExternalID:     eventID,
		Customer:       clientName,
		Description:    fmt.Sprintf("Locação de equipamentos - %s (%s)", venue, funcs.FormatBRL(budgetCentavos)),
		AmountCentavos: budgetCentavos,
		IssuedAt:       endsAt.Format(time.RFC3339),
	}
}

func (c *Client) PushSale(ctx context.Context, sale *Sale) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sale)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/sales", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("conta azul sale push returned %d", resp.StatusCode)
	}

	return nil
}
