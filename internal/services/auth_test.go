package services

import (
	"net/http"
	"testing"

	"github.com/bugtrail/bugtrail/internal/config"
	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/internal/utils"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	utils.SetJWTSecret("test-secret")
	db := newTestDB(t)
	cfg := &config.JWTConfig{Secret: "test-secret", ExpireHour: 1, RefreshExpireHour: 24}
	return NewAuthService(db, cfg)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Bio:             "gopher",
	}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("access token should not be empty")
	}
	if result.RefreshToken == "" {
		t.Error("refresh token should not be empty")
	}
	if result.User.Username != "alice" {
		t.Errorf("Username = %q, expected %q", result.User.Username, "alice")
	}

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret123"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := utils.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Errorf("claims.UserID = %d, expected %d", claims.UserID, result.User.ID)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "mismatch",
	}, "", "")
	assertAppError(t, err, http.StatusBadRequest)

	if _, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err = svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "other456",
		ConfirmPassword: "other456",
	}, "", "")
	assertAppError(t, err, http.StatusConflict)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Login(&LoginRequest{Username: "alice", Password: "wrong"}, "", "")
	assertAppError(t, err, http.StatusUnauthorized)

	// Unknown users get the same generic denial as wrong passwords.
	_, err = svc.Login(&LoginRequest{Username: "nobody", Password: "secret123"}, "", "")
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestAuthService_RefreshRotation(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	refreshed, err := svc.Refresh(result.RefreshToken, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.RefreshToken == result.RefreshToken {
		t.Error("refresh should rotate the token")
	}

	// The consumed token is revoked: a second use is rejected.
	_, err = svc.Refresh(result.RefreshToken, "", "")
	assertAppError(t, err, http.StatusUnauthorized)

	// The new token still works.
	if _, err := svc.Refresh(refreshed.RefreshToken, "", ""); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	_, err = svc.Refresh("deadbeef", "", "")
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestAuthService_RevokeRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.RevokeRefreshToken(result.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken failed: %v", err)
	}

	_, err = svc.Refresh(result.RefreshToken, "", "")
	assertAppError(t, err, http.StatusUnauthorized)

	// Revoking garbage is silent.
	if err := svc.RevokeRefreshToken("deadbeef"); err != nil {
		t.Errorf("unknown token revoke should be nil, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(&RegisterRequest{
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err = svc.ChangePassword(result.User.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newsecret",
	})
	assertAppError(t, err, http.StatusForbidden)

	if err := svc.ChangePassword(result.User.ID, &ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "newsecret",
	}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Username: "alice", Password: "newsecret"}, "", ""); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuditService_Record(t *testing.T) {
	db := newTestDB(t)
	InitAuditLogger(db)
	defer InitAuditLogger(nil)

	uid := uint(5)
	RecordAudit("info", "Projects", "Create", "[Audit] alice POST /api/projects -> OK",
		&uid, "127.0.0.1", "test-agent", map[string]interface{}{"status": 201})

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("audit entry not written: %v", err)
	}
	if entry.Module != "Projects" {
		t.Errorf("Module = %q, expected %q", entry.Module, "Projects")
	}
	if entry.UserID == nil || *entry.UserID != 5 {
		t.Error("UserID should be recorded")
	}
	if entry.Extra == "" {
		t.Error("Extra should carry the JSON payload")
	}
}
