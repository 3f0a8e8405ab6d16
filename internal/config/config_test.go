package config

import (
	"strings"
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:    AppConfig{Env: "local", Port: 8080},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "receptionist"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Auth:   AuthConfig{JWTSecret: "secret"},
		Twilio: TwilioConfig{AccountSID: "AC1", FromNumber: "+15550001111"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected access ttl default, got %v", c.Auth.AccessTokenTTL)
	}
	if c.OpenAI.Timeout != 4*time.Second {
		t.Fatalf("expected openai timeout default, got %v", c.OpenAI.Timeout)
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "issuer"
	c.Twilio.AuthToken = "token"
	c.Twilio.PublicBaseURL = "https://ai.example.com"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "DB_SSLMODE") {
		t.Fatalf("expected DB_SSLMODE error, got %v", err)
	}
}

func TestValidate_ProductionRequiresWebhookSecurity(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Auth.JWTIssuer = "issuer"
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "TWILIO_AUTH_TOKEN") || !strings.Contains(err.Error(), "PUBLIC_BASE_URL") {
		t.Fatalf("expected webhook security errors, got %v", err)
	}
}

func TestValidate_FromNumberRequiredUnlessDisabled(t *testing.T) {
	c := validLocal()
	c.Twilio.FromNumber = ""
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "TWILIO_FROM_NUMBER") {
		t.Fatalf("expected from-number error, got %v", err)
	}

	c = validLocal()
	c.Twilio.FromNumber = ""
	c.Twilio.SMSDisabled = true
	if err := c.Validate(); err != nil {
		t.Fatalf("sms disabled should not require a number, got %v", err)
	}
}

func TestValidate_OpenAIModelDefault(t *testing.T) {
	c := validLocal()
	c.OpenAI.APIKey = "sk-test"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.OpenAI.Model == "" {
		t.Fatalf("expected model default when api key set")
	}

	c = validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.OpenAI.Model != "" {
		t.Fatalf("no api key, model should stay empty, got %q", c.OpenAI.Model)
	}
}
