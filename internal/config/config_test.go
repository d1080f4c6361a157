package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "TOKEN_TTL", "STRICT_TOKENS", "SAMPLE_QUANTUM", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.DBDriver != "sqlite" {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.TokenTTL != 8*time.Hour || c.SampleQuantum != time.Second || c.StrictTokens {
		t.Errorf("unexpected defaults %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SAMPLE_QUANTUM", "1ms")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("STRICT_TOKENS", "")

	c := FromEnv()
	if !c.StrictTokens {
		t.Error("online mode should default to strict tokens")
	}
	if c.SampleQuantum != time.Millisecond || c.RedisDB != 3 {
		t.Errorf("unexpected overrides %+v", c)
	}
	origins := c.CORSOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", origins)
	}
}

func TestValidate(t *testing.T) {
	c := Config{Mode: ModeOffline, DBDriver: "oracle", SampleQuantum: 0, TokenTTL: time.Hour, StrictTokens: true}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DB_DRIVER", "SAMPLE_QUANTUM", "AUTH_HMAC_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateRejectsDefaultSecretOnline(t *testing.T) {
	c := Config{Mode: ModeOnline, DBDriver: "postgres", SampleQuantum: time.Second, TokenTTL: time.Hour,
		StrictTokens: true, AuthHMACSecret: DefaultHMACSecret}
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "must be set in online mode") {
		t.Fatalf("expected default secret to be rejected online, got %v", err)
	}

	c.AuthHMACSecret = "a-real-deployment-secret"
	if err := c.Validate(); err != nil {
		t.Errorf("custom secret should validate: %v", err)
	}

	c.Mode = ModeOffline
	c.AuthHMACSecret = DefaultHMACSecret
	if err := c.Validate(); err != nil {
		t.Errorf("default secret is fine offline: %v", err)
	}
}
