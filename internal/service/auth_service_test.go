package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
)

func newAuthEnv(t *testing.T) (*testEnv, AuthService) {
	t.Helper()
	env := newTestEnv()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret-at-least-16-chars"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.RefreshTokenTTLDefault = 24 * time.Hour
	cfg.Auth.RefreshTokenTTLRemember = 168 * time.Hour

	svc := NewAuthService(env.repo, cfg, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
	return env, svc
}

func (e *testEnv) addMemberWithCode(t *testing.T, lastName, code string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing code: %v", err)
	}
	m := &model.Member{
		Rank:      "Sd.",
		FirstName: "Ion",
		LastName:  lastName,
		CodeHash:  string(hash),
		Role:      model.RoleMember,
	}
	if err := e.members.Create(context.Background(), m); err != nil {
		t.Fatalf("creating member: %v", err)
	}
	return m.MemberID
}

func TestLoginByCode(t *testing.T) {
	env, svc := newAuthEnv(t)
	ctx := context.Background()
	a := env.addMemberWithCode(t, "Popescu", "1234")
	env.addMemberWithCode(t, "Barbu", "5678")

	resp, err := svc.Login(ctx, "1234", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Member.ID != a {
		t.Errorf("member = %s, want %s", resp.Member.ID, a)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("token pair must be issued")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in = %d, want 900", resp.ExpiresIn)
	}
}

func TestLoginRejectsUnknownCode(t *testing.T) {
	env, svc := newAuthEnv(t)
	env.addMemberWithCode(t, "Popescu", "1234")

	for _, code := range []string{"0000", "12345", "abcd", ""} {
		if _, err := svc.Login(context.Background(), code, false); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("code %q: err = %v, want ErrInvalidCode", code, err)
		}
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	env, svc := newAuthEnv(t)
	ctx := context.Background()
	env.addMemberWithCode(t, "Popescu", "1234")

	login, err := svc.Login(ctx, "1234", true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Error("refresh must issue a new token pair")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token must rotate")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env, svc := newAuthEnv(t)
	ctx := context.Background()
	env.addMemberWithCode(t, "Popescu", "1234")

	login, err := svc.Login(ctx, "1234", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for access token", err)
	}
	if _, err := svc.Refresh(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for garbage", err)
	}
}

func TestChangeCode(t *testing.T) {
	env, svc := newAuthEnv(t)
	ctx := context.Background()
	a := env.addMemberWithCode(t, "Popescu", "1234")
	env.addMemberWithCode(t, "Barbu", "5678")

	if err := svc.ChangeCode(ctx, a, "0000", "4321"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong old code: err = %v, want ErrInvalidCode", err)
	}
	if err := svc.ChangeCode(ctx, a, "1234", "5678"); !errors.Is(err, ErrCodeTaken) {
		t.Errorf("taken code: err = %v, want ErrCodeTaken", err)
	}
	if err := svc.ChangeCode(ctx, a, "1234", "4321"); err != nil {
		t.Fatalf("ChangeCode: %v", err)
	}

	if _, err := svc.Login(ctx, "4321", false); err != nil {
		t.Errorf("login with new code: %v", err)
	}
	if _, err := svc.Login(ctx, "1234", false); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("login with old code: err = %v, want ErrInvalidCode", err)
	}
}

func TestMe(t *testing.T) {
	env, svc := newAuthEnv(t)
	ctx := context.Background()
	a := env.addMemberWithCode(t, "Popescu", "1234")

	resp, err := svc.Me(ctx, a)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if resp.LastName != "Popescu" {
		t.Errorf("last name = %q, want Popescu", resp.LastName)
	}

	if _, err := svc.Me(ctx, "no-such-id"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("err = %v, want ErrUnknownMember", err)
	}
}
