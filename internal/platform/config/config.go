package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys used with viper. cobra flags bind to the same keys so a flag overrides
// the environment, which overrides the defaults below.
const (
	KeyTableName          = "table_name"
	KeyRegion             = "region"
	KeyUserPoolID         = "user_pool_id"
	KeyJWKSURL            = "jwks_url"
	KeyIssuer             = "issuer"
	KeyAudience           = "audience"
	KeyTrustGatewayClaims = "trust_gateway_claims"
	KeyJWKSCacheTTL       = "jwks_cache_ttl"
	KeyCharityGroup       = "charity_group"
	KeyServerAddr         = "server_addr"
	KeyRequestTimeout     = "request_timeout"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
)

// RequiredGroup is the group a caller must belong to for findMatches.
const RequiredGroup = "Charity"

var envBindings = map[string]string{
	KeyTableName:          "MATCHING_TABLE_NAME",
	KeyRegion:             "AWS_REGION",
	KeyUserPoolID:         "COGNITO_USER_POOL_ID",
	KeyJWKSURL:            "COGNITO_JWKS_URL",
	KeyIssuer:             "COGNITO_ISSUER",
	KeyAudience:           "JWT_AUDIENCE",
	KeyTrustGatewayClaims: "TRUST_GATEWAY_CLAIMS",
	KeyJWKSCacheTTL:       "JWKS_CACHE_TTL",
	KeyCharityGroup:       "CHARITY_GROUP_NAME",
	KeyServerAddr:         "SERVER_ADDR",
	KeyRequestTimeout:     "REQUEST_TIMEOUT",
	KeyLogLevel:           "LOG_LEVEL",
	KeyLogFormat:          "LOG_FORMAT",
}

// Config holds the application configuration.
type Config struct {
	// TableName is the single DynamoDB table holding volunteer items.
	TableName string
	Region    string

	Auth Auth

	// CharityGroup is the group the post-confirmation hook adds users to.
	CharityGroup string

	ServerAddr     string
	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Auth holds bearer-token verification settings.
type Auth struct {
	UserPoolID string
	JWKSURL    string
	Issuer     string
	// Audience is optional; when empty the aud/client_id check is skipped.
	Audience string
	// TrustGatewayClaims enables the two authorizer-claims strategies. Turn it
	// off when requests can reach the service without passing the gateway.
	TrustGatewayClaims bool
	// JWKSCacheTTL of zero keeps the first fetched key set for the process lifetime.
	JWKSCacheTTL time.Duration
}

// Defaults registers default values on the global viper instance.
func Defaults() {
	viper.SetDefault(KeyTableName, "MatchingTable")
	viper.SetDefault(KeyRegion, "eu-west-2")
	viper.SetDefault(KeyTrustGatewayClaims, true)
	viper.SetDefault(KeyJWKSCacheTTL, time.Duration(0))
	viper.SetDefault(KeyCharityGroup, RequiredGroup)
	viper.SetDefault(KeyServerAddr, ":8080")
	viper.SetDefault(KeyRequestTimeout, 10*time.Second)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "json")
}

// Load reads configuration from environment variables (and any flags bound to
// the global viper instance) with fallback defaults.
func Load() (*Config, error) {
	Defaults()
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		TableName:      strings.TrimSpace(viper.GetString(KeyTableName)),
		Region:         viper.GetString(KeyRegion),
		CharityGroup:   strings.TrimSpace(viper.GetString(KeyCharityGroup)),
		ServerAddr:     viper.GetString(KeyServerAddr),
		RequestTimeout: viper.GetDuration(KeyRequestTimeout),
		LogLevel:       viper.GetString(KeyLogLevel),
		LogFormat:      viper.GetString(KeyLogFormat),
		Auth: Auth{
			UserPoolID:         viper.GetString(KeyUserPoolID),
			JWKSURL:            viper.GetString(KeyJWKSURL),
			Issuer:             viper.GetString(KeyIssuer),
			Audience:           viper.GetString(KeyAudience),
			TrustGatewayClaims: viper.GetBool(KeyTrustGatewayClaims),
			JWKSCacheTTL:       viper.GetDuration(KeyJWKSCacheTTL),
		},
	}

	if cfg.TableName == "" {
		return nil, fmt.Errorf("MATCHING_TABLE_NAME must not be empty")
	}
	if cfg.CharityGroup == "" {
		return nil, fmt.Errorf("CHARITY_GROUP_NAME must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.Auth.JWKSCacheTTL < 0 {
		return nil, fmt.Errorf("JWKS_CACHE_TTL must not be negative, got %s", cfg.Auth.JWKSCacheTTL)
	}

	if cfg.Auth.UserPoolID != "" {
		issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.Auth.UserPoolID)
		if cfg.Auth.Issuer == "" {
			cfg.Auth.Issuer = issuer
		}
		if cfg.Auth.JWKSURL == "" {
			cfg.Auth.JWKSURL = issuer + "/.well-known/jwks.json"
		}
	}

	return cfg, nil
}

// BearerVerificationEnabled reports whether a key endpoint is known. Without
// one every bearer token is rejected.
func (a Auth) BearerVerificationEnabled() bool {
	return a.JWKSURL != ""
}
