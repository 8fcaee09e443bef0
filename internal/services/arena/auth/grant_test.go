package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvGrantIssuer, "")
	t.Setenv(EnvGrantAudience, "")
	t.Setenv(EnvGrantPublicKey, "")

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when env vars are missing")
	}

	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	t.Setenv(EnvGrantIssuer, "stakepot")
	t.Setenv(EnvGrantAudience, "arena")
	t.Setenv(EnvGrantPublicKey, base64.RawStdEncoding.EncodeToString(pubKey))

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load grant config: %v", err)
	}
	if cfg.Issuer != "stakepot" || cfg.Audience != "arena" {
		t.Fatal("expected issuer and audience to be loaded")
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		t.Fatalf("expected public key size %d", ed25519.PublicKeySize)
	}
}

func TestLoadConfigFromEnvRejectsShortKey(t *testing.T) {
	t.Setenv(EnvGrantIssuer, "stakepot")
	t.Setenv(EnvGrantAudience, "arena")
	t.Setenv(EnvGrantPublicKey, base64.RawStdEncoding.EncodeToString([]byte("short")))

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for truncated public key")
	}
}

func TestVerifySuccess(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{
		"alg": "EdDSA",
		"typ": "JWT",
	}, map[string]any{
		"iss":  "stakepot",
		"aud":  []string{"arena", "secondary"},
		"sub":  "alice",
		"exp":  now.Add(2 * time.Hour).Unix(),
		"iat":  now.Add(-time.Minute).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	claims, err := Verify(grant, cfg)
	if err != nil {
		t.Fatalf("verify grant: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject = %q, want alice", claims.Subject)
	}
	if claims.Role != RolePlayer {
		t.Fatalf("role = %q, want %q", claims.Role, RolePlayer)
	}
	if !claims.ExpiresAt.Equal(time.Unix(now.Add(2*time.Hour).Unix(), 0).UTC()) {
		t.Fatal("expected expires at to match exp")
	}
}

func TestVerifyAdminRole(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"sub":  "root",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "admin",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	claims, err := Verify(grant, cfg)
	if err != nil {
		t.Fatalf("verify grant: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestVerifyExpired(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"sub":  "alice",
		"exp":  now.Add(-time.Minute).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeGrantExpired {
		t.Fatalf("expected GRANT_EXPIRED, got %v", err)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "someone-else",
		"aud":  "arena",
		"sub":  "alice",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeGrantMismatch {
		t.Fatalf("expected GRANT_MISMATCH, got %v", err)
	}
	if got := apperrors.MetadataOf(err)["Field"]; got != "issuer" {
		t.Fatalf("mismatch field = %q, want issuer", got)
	}
}

func TestVerifyUnknownRole(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"sub":  "alice",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "superuser",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeGrantMismatch {
		t.Fatalf("expected GRANT_MISMATCH for unknown role, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if err == nil || !strings.Contains(err.Error(), "subject") {
		t.Fatalf("expected subject error, got %v", err)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: time.Now}
	_, err = Verify("invalid.token.parts", cfg)
	if err == nil {
		t.Fatal("expected error for invalid grant")
	}
}

func TestVerifyWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate verify key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"sub":  "alice",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: otherPub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeGrantInvalid {
		t.Fatalf("expected GRANT_INVALID, got %v", err)
	}
}

func TestVerifyRejectsUnsignedAlg(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{"alg": "none"}, map[string]any{
		"iss":  "stakepot",
		"aud":  "arena",
		"sub":  "alice",
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  "jti-1",
		"role": "player",
	})

	cfg := Config{Issuer: "stakepot", Audience: "arena", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(grant, cfg)
	if err == nil {
		t.Fatal("expected error for unsigned alg")
	}
}

func signGrant(t *testing.T, privateKey ed25519.PrivateKey, header, payload map[string]any) string {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(privateKey, []byte(signingInput))
	encodedSig := base64.RawURLEncoding.EncodeToString(signature)
	return signingInput + "." + encodedSig
}
