// Package auth 基于 HS256 JWT 识别当前用户
package auth

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"conference/errors"
	"conference/httpx"
	"conference/logging"
)

// User 已认证用户
type User struct {
	ID       string
	Email    string
	Nickname string
}

// Claims JWT 载荷
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// 认证错误
var (
	ErrNoSecret     = stdErrors.New("auth: no secret configured")
	ErrInvalidToken = stdErrors.New("auth: invalid token")
)

// Authenticator 签发与校验令牌
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator 创建认证器，ttl <= 0 时默认 24 小时
func NewAuthenticator(secret, issuer string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// IssueToken 为用户签发令牌
func (a *Authenticator) IssueToken(u User) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrNoSecret
	}
	now := a.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Email:    u.Email,
		Nickname: u.Nickname,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify 校验令牌并返回用户
func (a *Authenticator) Verify(token string) (*User, error) {
	if len(a.secret) == 0 {
		return nil, ErrNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, stdErrors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	nickname := claims.Nickname
	if nickname == "" {
		nickname = strings.SplitN(claims.Email, "@", 2)[0]
	}
	return &User{ID: claims.Subject, Email: claims.Email, Nickname: nickname}, nil
}

type userKey struct{}

// WithUser 将用户放入 context
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom 取出当前用户
func UserFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey{}).(*User)
	return u, ok && u != nil
}

// RequireUser 未认证时返回 UNAUTHORIZED
func RequireUser(ctx context.Context) (*User, error) {
	if u, ok := UserFrom(ctx); ok {
		return u, nil
	}
	return nil, errors.ErrUnauthorized
}

// Middleware 解析 Bearer 令牌；缺失或无效时保持匿名
func Middleware(a *Authenticator, logger logging.Logger) httpx.Middleware {
	if logger == nil {
		logger = logging.ComponentLogger("auth")
	}
	return func(ctx httpx.IHttpContext, next func() error) error {
		header := ctx.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" || a == nil {
			return next()
		}
		u, err := a.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.Debug(ctx.Context(), "rejecting bearer token", logging.Error(err))
			return next()
		}
		ctx.SetContext(WithUser(ctx.Context(), u))
		return next()
	}
}
