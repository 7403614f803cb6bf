// Package auth 请求认证：Bearer 令牌提取、令牌校验适配、角色解析、HTTP 中间件
//
// 令牌由外部身份服务签发，本包只做校验并把解码出的主体（Principal）
// 挂到请求上下文。校验是请求级的：每次调用都重新校验，不缓存解码结果。
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey context 键类型
type contextKey string

const ctxKeyPrincipal contextKey = "principal"

// Principal 认证主体：令牌校验成功后挂到请求上下文的身份信息
type Principal struct {
	Email string
}

// WithPrincipal 将认证主体写入 context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// GetPrincipal 从 context 读取认证主体，未认证返回 nil
func GetPrincipal(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*Principal)
	return p
}

// ============================================================================
// 令牌校验
// ============================================================================

// TokenVerifier 令牌校验适配器
//
// 隔离具体的身份服务实现，任何校验失败（过期、签名错误、格式损坏）
// 统一以 error 返回，由中间件翻译为 401。
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Claims JWT 声明
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTVerifier 基于 HS256 共享密钥的 TokenVerifier 实现
type JWTVerifier struct {
	secret []byte
}

var _ TokenVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier 创建 JWT 校验器
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify 解析并校验 JWT，成功后返回令牌携带的主体
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("token missing email claim")
	}
	return &Principal{Email: claims.Email}, nil
}

// SignToken 用共享密钥为指定邮箱签发令牌
// 正式环境令牌来自外部身份服务，此函数用于本地开发和测试
func SignToken(secret, email string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
