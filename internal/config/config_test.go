package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8081" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8081")
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.SessionTokenIssuer != "docverify-portal" {
		t.Errorf("SessionTokenIssuer = %q, want %q", cfg.SessionTokenIssuer, "docverify-portal")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.MaxUploadBytes != 5242880 {
		t.Errorf("MaxUploadBytes = %d, want 5242880", cfg.MaxUploadBytes)
	}
	if cfg.VerificationMode != VerificationStub {
		t.Errorf("VerificationMode = %q, want %q", cfg.VerificationMode, VerificationStub)
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
	if cfg.ClearDocumentsOnLogout {
		t.Error("ClearDocumentsOnLogout should default to false")
	}
	if cfg.ServiceName != "docverify-portal" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.TokenTTL() != 12*time.Hour {
		t.Errorf("TokenTTL() = %v, want 12h", cfg.TokenTTL())
	}
	if cfg.UploadDelayDuration() != 2*time.Second {
		t.Errorf("UploadDelayDuration() = %v, want 2s", cfg.UploadDelayDuration())
	}
	if cfg.ResendCooldownDuration() != 60*time.Second {
		t.Errorf("ResendCooldownDuration() = %v, want 60s", cfg.ResendCooldownDuration())
	}
	if cfg.OTPTTLDuration() != 5*time.Minute {
		t.Errorf("OTPTTLDuration() = %v, want 5m", cfg.OTPTTLDuration())
	}
	if cfg.DevEndpoints() {
		t.Error("DevEndpoints should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9091")
	t.Setenv("SESSION_TOKEN_ISSUER", "custom-issuer")
	t.Setenv("BCRYPT_COST", "14")
	t.Setenv("VERIFICATION_MODE", "otp")
	t.Setenv("CLEAR_DOCUMENTS_ON_LOGOUT", "true")
	t.Setenv("UPLOAD_DELAY", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9091" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9091")
	}
	if cfg.SessionTokenIssuer != "custom-issuer" {
		t.Errorf("SessionTokenIssuer = %q, want %q", cfg.SessionTokenIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.VerificationMode != VerificationOTP {
		t.Errorf("VerificationMode = %q", cfg.VerificationMode)
	}
	if !cfg.ClearDocumentsOnLogout {
		t.Error("ClearDocumentsOnLogout = false, want true")
	}
	if cfg.UploadDelayDuration() != 0 {
		t.Errorf("UploadDelayDuration() = %v, want 0", cfg.UploadDelayDuration())
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	tests := []struct {
		value string
		err   bool
	}{
		{"4", false},
		{"31", false},
		{"3", true},
		{"32", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.value)
			_, err := Load()
			if (err != nil) != tt.err {
				t.Errorf("Load() err = %v, want err %v", err, tt.err)
			}
		})
	}
}

func TestLoad_VerificationModeInvalid(t *testing.T) {
	t.Setenv("VERIFICATION_MODE", "magic")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "VERIFICATION_MODE") {
		t.Fatalf("Load() err = %v, want VERIFICATION_MODE error", err)
	}
}

func TestLoad_MaxUploadBytesPositive(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject negative MAX_UPLOAD_BYTES")
	}
}

func TestLoad_OTPReturnToClientProduction(t *testing.T) {
	t.Setenv("OTP_RETURN_TO_CLIENT", "true")
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when OTP_RETURN_TO_CLIENT=true and APP_ENV=production")
	}
	if !strings.Contains(err.Error(), "OTP_RETURN_TO_CLIENT") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_OTPReturnToClientDevelopment(t *testing.T) {
	t.Setenv("OTP_RETURN_TO_CLIENT", "true")
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DevEndpoints() {
		t.Error("DevEndpoints = false in development with OTP_RETURN_TO_CLIENT")
	}
}

func TestLoadArgs_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("GRPC_ADDR", ":7001")
	cfg, err := LoadArgs([]string{"--http-addr", ":9000", "--env-file", ""})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want flag value :9000", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":7001" {
		t.Errorf("GRPCAddr = %q, want env value :7001", cfg.GRPCAddr)
	}
}

func TestLoadArgs_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.env")
	content := "SESSION_TOKEN_ISSUER=from-file\nRESEND_COOLDOWN=30s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadArgs([]string{"--env-file", path})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.SessionTokenIssuer != "from-file" {
		t.Errorf("SessionTokenIssuer = %q, want from-file", cfg.SessionTokenIssuer)
	}
	if cfg.ResendCooldownDuration() != 30*time.Second {
		t.Errorf("ResendCooldownDuration() = %v, want 30s", cfg.ResendCooldownDuration())
	}
}

func TestLoadArgs_UnknownFlag(t *testing.T) {
	if _, err := LoadArgs([]string{"--nope"}); err == nil {
		t.Fatal("LoadArgs should reject unknown flags")
	}
}

func TestDurations_InvalidFallBack(t *testing.T) {
	c := &Config{SessionTokenTTL: "soon", UploadDelay: "-1s", ResendCooldown: "", OTPTTL: "0s"}
	if c.TokenTTL() != 12*time.Hour {
		t.Errorf("TokenTTL() = %v", c.TokenTTL())
	}
	if c.UploadDelayDuration() != 2*time.Second {
		t.Errorf("UploadDelayDuration() = %v", c.UploadDelayDuration())
	}
	if c.ResendCooldownDuration() != 60*time.Second {
		t.Errorf("ResendCooldownDuration() = %v", c.ResendCooldownDuration())
	}
	if c.OTPTTLDuration() != 5*time.Minute {
		t.Errorf("OTPTTLDuration() = %v", c.OTPTTLDuration())
	}
}
