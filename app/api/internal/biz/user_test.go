package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

// mockUserRepo 模拟用户仓库
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*User{}}
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; !ok {
		m.users[u.Username] = u
	}
	return nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
	}
	return u, nil
}

func newTestAuth(t *testing.T) (*AuthUseCase, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	cfg := config.Default()
	cfg.Auth.JWTKey = "test-key"
	uc := NewAuthUseCase(repo, cfg, log.DefaultLogger)
	uc.cost = bcrypt.MinCost
	err := uc.SeedUsers(context.Background(), []config.AuthorityUser{
		{Username: "officer", Password: "s3cret", Department: "Cyber Cell", Role: "analyst"},
		{Username: "", Password: "ignored"},
	})
	if err != nil {
		t.Fatalf("SeedUsers() error = %v", err)
	}
	return uc, repo
}

func TestAuthUseCase_SeedUsers(t *testing.T) {
	_, repo := newTestAuth(t)
	if len(repo.users) != 1 {
		t.Fatalf("seeded %d users, want 1", len(repo.users))
	}
	u := repo.users["officer"]
	if u.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestAuthUseCase_Login(t *testing.T) {
	uc, _ := newTestAuth(t)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	tests := []struct {
		name     string
		username string
		password string
		code     int
	}{
		{"ok", "officer", "s3cret", 200},
		{"wrong password", "officer", "nope", 401},
		{"unknown user", "ghost", "s3cret", 401},
		{"missing fields", "", "", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := uc.Login(context.Background(), tt.username, tt.password)
			if errors.Code(err) != tt.code {
				t.Fatalf("Login() error = %v, want code %d", err, tt.code)
			}
			if err != nil {
				return
			}
			if !tok.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
				t.Errorf("ExpiresAt = %v", tok.ExpiresAt)
			}
			claims, err := uc.Verify(tok.Token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Username != "officer" || claims.Department != "Cyber Cell" || claims.Role != "analyst" {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestAuthUseCase_VerifyRejects(t *testing.T) {
	uc, _ := newTestAuth(t)
	now := time.Now()
	uc.now = func() time.Time { return now }
	tok, err := uc.Login(context.Background(), "officer", "s3cret")
	if err != nil {
		t.Fatal(err)
	}

	// 过期
	now = now.Add(25 * time.Hour)
	if _, err := uc.Verify(tok.Token); errors.Code(err) != 401 {
		t.Errorf("expired token error = %v, want 401", err)
	}
	now = time.Now()

	// 其他密钥签发
	other, _ := newTestAuth(t)
	other.jwtKey = []byte("another-key")
	otherTok, err := other.Login(context.Background(), "officer", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Verify(otherTok.Token); errors.Code(err) != 401 {
		t.Errorf("foreign token error = %v, want 401", err)
	}

	if _, err := uc.Verify("garbage"); errors.Code(err) != 401 {
		t.Errorf("garbage token error = %v, want 401", err)
	}
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromAuthContext(ctx); ok {
		t.Error("empty context should be anonymous")
	}
	ctx = NewAuthContext(ctx, &Claims{Username: "officer"})
	if c, ok := FromAuthContext(ctx); !ok || c.Username != "officer" {
		t.Errorf("FromAuthContext() = %+v, %v", c, ok)
	}
}
