package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

// User 权威用户
type User struct {
	Username     string
	PasswordHash string
	Department   string
	Role         string
}

// UserRepo 用户仓库接口
type UserRepo interface {
	// CreateUser 创建用户，用户名已存在时不做修改
	CreateUser(ctx context.Context, u *User) error
	// GetUserByUsername 根据用户名获取用户
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// Token 登录凭证
type Token struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	Username   string    `json:"username"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
}

// Claims 从令牌中解析出的身份
type Claims struct {
	Username   string
	Department string
	Role       string
}

var ErrInvalidCredentials = errors.Unauthorized("INVALID_CREDENTIALS", "invalid username or password")

// AuthUseCase 权威用户认证
type AuthUseCase struct {
	repo   UserRepo
	log    *log.Helper
	jwtKey []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewAuthUseCase 创建认证业务逻辑实例，并写入配置中的初始账号
func NewAuthUseCase(repo UserRepo, cfg *config.Config, logger log.Logger) *AuthUseCase {
	jwtKey := "default-secret"
	if cfg.Auth.JWTKey != "" {
		jwtKey = cfg.Auth.JWTKey
	}
	uc := &AuthUseCase{
		repo:   repo,
		log:    log.NewHelper(logger),
		jwtKey: []byte(jwtKey),
		ttl:    time.Duration(cfg.Auth.TokenTTL) * time.Hour,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	if uc.ttl <= 0 {
		uc.ttl = 24 * time.Hour
	}
	if cfg.Auth.JWTKey == "" {
		uc.log.Warn("未配置 jwt_key，使用默认密钥")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.SeedUsers(ctx, cfg.Auth.Seed); err != nil {
		uc.log.Errorf("初始化权威账号失败: %v", err)
	}
	return uc
}

// SeedUsers 写入初始账号，已存在的用户保持不变
func (uc *AuthUseCase) SeedUsers(ctx context.Context, users []config.AuthorityUser) error {
	for _, u := range users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), uc.cost)
		if err != nil {
			return err
		}
		err = uc.repo.CreateUser(ctx, &User{
			Username:     u.Username,
			PasswordHash: string(hashed),
			Department:   u.Department,
			Role:         u.Role,
		})
		if err != nil {
			return err
		}
	}
	if len(users) > 0 {
		uc.log.Infof("已写入 %d 个权威账号", len(users))
	}
	return nil
}

// Login 用户登录，成功后签发 JWT
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, errors.BadRequest("MISSING_CREDENTIALS", "username and password are required")
	}
	u, err := uc.repo.GetUserByUsername(ctx, username)
	if errors.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	// 校验密码哈希
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("登录失败: %s", username)
		return nil, ErrInvalidCredentials
	}

	exp := uc.now().Add(uc.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username":   u.Username,
		"department": u.Department,
		"role":       u.Role,
		"exp":        exp.Unix(),
	})
	signed, err := token.SignedString(uc.jwtKey)
	if err != nil {
		return nil, err
	}
	return &Token{
		Token:      signed,
		ExpiresAt:  exp.UTC(),
		Username:   u.Username,
		Department: u.Department,
		Role:       u.Role,
	}, nil
}

// Verify 校验令牌签名与有效期
func (uc *AuthUseCase) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return uc.jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	}
	c := &Claims{}
	c.Username, _ = mc["username"].(string)
	c.Department, _ = mc["department"].(string)
	c.Role, _ = mc["role"].(string)
	if c.Username == "" {
		return nil, errors.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	}
	return c, nil
}

type claimsKey struct{}

// NewAuthContext 把身份写入 context
func NewAuthContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// FromAuthContext 取出身份，匿名请求返回 false
func FromAuthContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
