package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"flavorhood/internal/shared/model"
)

// UserStore 角色解析所需的用户存储接口
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Middleware 认证与授权中间件
//
// Authenticated 先校验令牌再放行；AdminOnly 在此之上再做角色检查。
// 角色检查依赖已挂到 context 的 Principal，必须在 Authenticated 之后执行。
type Middleware struct {
	verifier TokenVerifier
	store    UserStore
}

// NewMiddleware 创建认证中间件
func NewMiddleware(verifier TokenVerifier, store UserStore) *Middleware {
	return &Middleware{verifier: verifier, store: store}
}

// bearerToken 从 Authorization 头提取 Bearer 令牌
// 令牌是第二个空白分隔段，scheme 大小写不敏感
func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}

// Authenticated 认证路由包装
//
// Authorization 头缺失时立即 401，不调用身份服务；
// 其余情况提交令牌校验，失败一律 401。
func (m *Middleware) Authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized access. Token not found!")
			return
		}

		token, err := bearerToken(header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized access.")
			return
		}

		principal, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			log.Printf("[auth] token verify error: %v", err)
			writeError(w, http.StatusUnauthorized, "unauthorized access.")
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	}
}

// IsAdmin 角色解析：按邮箱查用户，存在且角色为 admin 才返回 true
func (m *Middleware) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := m.store.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// AdminOnly 管理员专属路由包装：认证 + 角色检查
func (m *Middleware) AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		admin, err := m.IsAdmin(r.Context(), principal.Email)
		if err != nil {
			log.Printf("[auth] role lookup error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !admin {
			writeError(w, http.StatusForbidden, "forbidden access")
			return
		}
		next(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
