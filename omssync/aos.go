package omssync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/adsync_backend/config"
)

const aosTokenExpirationSeconds = 360

type aosClient struct {
	apiURL         string
	apiUser        string
	apiPass        string
	apiKey         string
	mayiServiceURL string
	tenantName     string
	fieldId        string
	http           *http.Client
}

func newAOSClient(creds AOSCredentials) (*aosClient, error) {
	if strings.TrimSpace(creds.APIURL) == "" || strings.TrimSpace(creds.APIKey) == "" {
		return nil, errors.New("aos credentials are incomplete")
	}
	fieldId := strings.TrimSpace(os.Getenv("AOS_PS_FIELD_ID"))
	if fieldId == "" {
		fieldId = "883"
	}
	return &aosClient{
		apiURL:         strings.TrimRight(creds.APIURL, "/"),
		apiUser:        creds.APIUser,
		apiPass:        creds.APIPass,
		apiKey:         creds.APIKey,
		mayiServiceURL: creds.MayIServiceURL,
		tenantName:     creds.TenantName,
		fieldId:        fieldId,
		http:           &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type aosTokenRequest struct {
	Expiration int    `json:"expiration"`
	Password   string `json:"password"`
	UserId     string `json:"userId"`
	APIKey     string `json:"apiKey"`
}

type aosTokenResponse struct {
	Token string `json:"token"`
}

// BearerToken exchanges credentials for a bearer token. Tokens are cached in
// Redis slightly shorter than their server-side lifetime, so most catalog
// pushes skip the exchange.
func (c *aosClient) BearerToken(ctx context.Context) (string, error) {
	cacheKey := "AOSToken:" + c.tenantName
	if token, ok, err := config.GetRedisValue(cacheKey); err == nil && ok && token != "" {
		return token, nil
	}

	payload, _ := json.Marshal(aosTokenRequest{
		Expiration: aosTokenExpirationSeconds,
		Password:   c.apiPass,
		UserId:     c.apiUser,
		APIKey:     c.apiKey,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mayiServiceURL+c.tenantName, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("aos token exchange error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var parsed aosTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Token) == "" {
		return "", errors.New("bearer token not found in response")
	}

	_ = config.SetRedisValue(cacheKey, parsed.Token, (aosTokenExpirationSeconds-30)*time.Second)
	return parsed.Token, nil
}

type PsFieldValue struct {
	ExternalId string `json:"externalId"`
	Status     string `json:"status"`
	Value      string `json:"value"`
}

// PushFieldValues posts the catalog snapshot into the configured AOS product
// field.
func (c *aosClient) PushFieldValues(ctx context.Context, values []PsFieldValue) error {
	token, err := c.BearerToken(ctx)
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string][]PsFieldValue{"psFieldValues": values})
	endpoint := fmt.Sprintf("%s/target/v1/%s/psFields/%s/values", c.apiURL, c.apiKey, c.fieldId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aos push error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
