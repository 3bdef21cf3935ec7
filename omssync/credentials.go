package omssync

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type O1Credentials struct {
	APIURL  string `json:"api_url"`
	APIUser string `json:"api_user"`
	APIPass string `json:"api_pass"`
}

type AOSCredentials struct {
	APIURL         string `json:"api_url"`
	APIUser        string `json:"api_user"`
	APIPass        string `json:"api_pass"`
	APIKey         string `json:"api_key"`
	MayIServiceURL string `json:"api_mayiservice_url"`
	TenantName     string `json:"api_tenant_name"`
}

type CredentialSet struct {
	Name string         `json:"name"`
	O1   O1Credentials  `json:"o1_credentials"`
	AOS  AOSCredentials `json:"aos_credentials"`
}

type credentialsFile struct {
	Credentials []CredentialSet `json:"credentials"`
}

// LoadCredentials reads the named credential set from the credentials file
// (CREDENTIALS_FILE, default local_credentials.json).
func LoadCredentials(name string) (*CredentialSet, error) {
	path := strings.TrimSpace(os.Getenv("CREDENTIALS_FILE"))
	if path == "" {
		path = "local_credentials.json"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var parsed credentialsFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	for i := range parsed.Credentials {
		if parsed.Credentials[i].Name == name {
			return &parsed.Credentials[i], nil
		}
	}
	return nil, fmt.Errorf("credentials for %q not found", name)
}

func catalogCredentialsName() string {
	if v := strings.TrimSpace(os.Getenv("CATALOG_CREDENTIALS_NAME")); v != "" {
		return v
	}
	return "ds04-product.com"
}
