package config

import "testing"

func TestDefaultConfig_Values(t *testing.T) {
	c := DefaultConfig()
	if c == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if c.Defaults.Beta != 2.0 {
		t.Errorf("Defaults.Beta = %v, want 2.0", c.Defaults.Beta)
	}
	if c.Defaults.Alpha != 0.5 {
		t.Errorf("Defaults.Alpha = %v, want 0.5", c.Defaults.Alpha)
	}
	if c.Defaults.MaxRounds != 10 {
		t.Errorf("Defaults.MaxRounds = %v, want 10", c.Defaults.MaxRounds)
	}
	if c.RateLimit.MaxRequestsPerMinutePerIP != 30 {
		t.Errorf("RateLimit.MaxRequestsPerMinutePerIP = %v, want 30", c.RateLimit.MaxRequestsPerMinutePerIP)
	}
	if c.RateLimit.MaxRequestBodyBytes != 65536 {
		t.Errorf("RateLimit.MaxRequestBodyBytes = %v, want 65536", c.RateLimit.MaxRequestBodyBytes)
	}
}

func TestValidate_RejectsMissingAdminKey(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err == nil {
		t.Fatal("want error when api.admin_key is empty")
	}
	c.API.AdminKey = "secret"
	if err := c.Validate(); err != nil {
		t.Fatalf("want valid config, got %v", err)
	}
}

func TestValidate_RejectsUnknownEnv(t *testing.T) {
	c := DefaultConfig()
	c.API.AdminKey = "secret"
	c.Env = "qa"
	if err := c.Validate(); err == nil {
		t.Fatal("want error for unrecognised env")
	}
}

func TestValidate_RejectsOutOfRangeAlpha(t *testing.T) {
	c := DefaultConfig()
	c.API.AdminKey = "secret"
	c.Defaults.Alpha = 1.5
	if err := c.Validate(); err == nil {
		t.Fatal("want error for alpha > 1")
	}
}
