package config

import (
	"os"
	"strings"
)

// CatalogPushDryRun skips the downstream field-value POST and only logs what
// would have been pushed. Useful while onboarding a new tenant.
//
// Set via env:
// - CATALOG_PUSH_DRY_RUN=true
func CatalogPushDryRun() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CATALOG_PUSH_DRY_RUN")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// RequireServiceAuth gates the catalog management endpoints behind a signed
// service token. Webhook endpoints are never gated here; the upstream OMS
// authenticates with its own Authorization header which is passed through.
//
// Set via env:
// - REQUIRE_SERVICE_AUTH=true
func RequireServiceAuth() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("REQUIRE_SERVICE_AUTH")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
