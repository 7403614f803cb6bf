// Package server 提供 HTTP API 装配
//
// 本包把各领域处理器装配为一个完整的 HTTP 服务，包括：
//   - 用户管理（User）接口
//   - 点评管理（Review）接口
//   - 收藏管理（Favorite）接口
//   - 健康检查与 Prometheus 指标端点
//
// 文件组织：
//   - common.go: Handler 定义与路由装配
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"flavorhood/internal/apiserver/auth"
	"flavorhood/internal/apiserver/favorite"
	"flavorhood/internal/apiserver/review"
	"flavorhood/internal/apiserver/user"
	"flavorhood/internal/shared/storage"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，持有存储层与令牌校验器，
// 各领域处理器在 Router 中集中注册，互不嵌套。
type Handler struct {
	store    storage.PersistentStore
	verifier auth.TokenVerifier
	metrics  *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, verifier auth.TokenVerifier) *Handler {
	return &Handler{
		store:    store,
		verifier: verifier,
		metrics:  NewMetrics("flavorhood"),
	}
}

// Router 构建路由
//
// 路由列表：
//   - GET    /                    - 存活探测
//   - GET    /health              - 健康检查
//   - GET    /metrics             - Prometheus 指标
//   - GET    /users               - 列出用户（管理员）
//   - GET    /users/role/{email}  - 查询角色（本人）
//   - GET    /users/{id}          - 按 ID 查询用户
//   - POST   /users               - 幂等创建用户
//   - PATCH  /users/admin/{id}    - 提升管理员（管理员）
//   - PUT    /users/{id}          - 更新用户资料（管理员）
//   - DELETE /users/{id}          - 删除用户（管理员）
//   - POST   /reviews             - 发布点评（认证）
//   - GET    /reviews             - 分页列出点评
//   - GET    /reviews/{id}        - 按 ID 查询点评
//   - PUT    /reviews/{id}        - 更新点评（作者）
//   - DELETE /reviews/{id}        - 删除点评（作者或管理员）
//   - GET    /my-reviews          - 当前用户的点评（认证）
//   - GET    /featured            - 精选点评
//   - GET    /search              - 菜名搜索
//   - POST   /favorites           - 收藏点评（认证）
//   - GET    /my-favorites        - 当前用户的收藏（认证）
//   - DELETE /favorites/{id}      - 取消收藏（所有者）
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler())

	mw := auth.NewMiddleware(h.verifier, h.store)

	userHandler := user.NewHandler(h.store)
	userHandler.RegisterRoutes(mux, mw)

	reviewHandler := review.NewHandler(h.store, mw)
	reviewHandler.RegisterRoutes(mux, mw)

	favoriteHandler := favorite.NewHandler(h.store)
	favoriteHandler.RegisterRoutes(mux, mw)

	// 指标与 CORS 包在最外层
	return corsMiddleware(h.metrics.MetricsMiddleware(mux))
}

// Root 存活探测
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("server is running"))
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
