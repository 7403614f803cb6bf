// Package review 点评领域 - HTTP 处理
package review

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"flavorhood/internal/apiserver/auth"
	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage"
)

// 精选栏目固定返回的条数
const featuredLimit = 6

// Store 点评存储接口
type Store interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id string) (*model.Review, error)
	ListReviews(ctx context.Context, q storage.ReviewQuery) ([]*model.Review, int64, error)
	ListReviewsByEmail(ctx context.Context, email string) ([]*model.Review, error)
	ListTopRatedReviews(ctx context.Context, limit int) ([]*model.Review, error)
	SearchReviews(ctx context.Context, term string) ([]*model.Review, error)
	UpdateReview(ctx context.Context, id, email string, update model.ReviewUpdate) (int64, error)
	DeleteReview(ctx context.Context, id, email string) (int64, error)
}

// RoleResolver 角色判定，删除时管理员可越过作者约束
type RoleResolver interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Handler 点评领域 HTTP 处理器
type Handler struct {
	store Store
	roles RoleResolver
}

// NewHandler 创建点评处理器
func NewHandler(store Store, roles RoleResolver) *Handler {
	return &Handler{store: store, roles: roles}
}

// RegisterRoutes 注册点评相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /reviews", h.List)
	mux.HandleFunc("GET /reviews/{id}", h.Get)
	mux.HandleFunc("POST /reviews", mw.Authenticated(h.Create))
	mux.HandleFunc("PUT /reviews/{id}", mw.Authenticated(h.Update))
	mux.HandleFunc("DELETE /reviews/{id}", mw.Authenticated(h.Delete))
	mux.HandleFunc("GET /my-reviews", mw.Authenticated(h.ListMine))
	mux.HandleFunc("GET /featured", h.Featured)
	mux.HandleFunc("GET /search", h.Search)
}

// List 分页列出点评，支持分类过滤与排序
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())

	reviews, total, err := h.store.ListReviews(r.Context(), q)
	if err != nil {
		log.Printf("[review] ListReviews error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"total":   total,
	})
}

// Get 按 ID 查询点评
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	review, err := h.store.GetReview(r.Context(), id)
	if err != nil {
		log.Printf("[review] GetReview error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get review")
		return
	}
	if review == nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Create 发布点评
// 作者邮箱与发布日期由服务端写入，请求体中的同名字段被忽略
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FoodName string  `json:"foodName"`
		Category string  `json:"category"`
		Rating   float64 `json:"rating"`
		Body     string  `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FoodName == "" {
		writeError(w, http.StatusBadRequest, "foodName is required")
		return
	}

	principal := auth.GetPrincipal(r.Context())
	review := &model.Review{
		ID:       generateID("rev"),
		Email:    principal.Email,
		FoodName: req.FoodName,
		Category: req.Category,
		Rating:   req.Rating,
		Body:     req.Body,
		Date:     time.Now(),
	}
	if err := h.store.CreateReview(r.Context(), review); err != nil {
		log.Printf("[review] CreateReview error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}

	log.Printf("[review] Review created: %s by %s", review.ID, review.Email)
	writeJSON(w, http.StatusCreated, review)
}

// Update 更新点评
//
// 更新条件同时绑定点评 ID 与请求主体邮箱，非作者的更新匹配零行，
// 与不存在的点评一样返回 404，不泄露他人点评的存在性。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update model.ReviewUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	principal := auth.GetPrincipal(r.Context())
	matched, err := h.store.UpdateReview(r.Context(), id, principal.Email, update)
	if err != nil {
		log.Printf("[review] UpdateReview error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update review")
		return
	}
	if matched == 0 {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}

	review, err := h.store.GetReview(r.Context(), id)
	if err != nil || review == nil {
		log.Printf("[review] reload after update error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update review")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Delete 删除点评
// 管理员不受作者约束，普通用户只能删除自己的点评
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	principal := auth.GetPrincipal(r.Context())

	email := principal.Email
	admin, err := h.roles.IsAdmin(r.Context(), principal.Email)
	if err != nil {
		log.Printf("[review] role lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	if admin {
		email = ""
	}

	deleted, err := h.store.DeleteReview(r.Context(), id, email)
	if err != nil {
		log.Printf("[review] DeleteReview error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	if deleted == 0 {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}

	log.Printf("[review] Review deleted: %s by %s", id, principal.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// ListMine 列出当前用户的全部点评
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())

	reviews, err := h.store.ListReviewsByEmail(r.Context(), principal.Email)
	if err != nil {
		log.Printf("[review] ListReviewsByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// Featured 精选点评：评分最高的若干条
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.ListTopRatedReviews(r.Context(), featuredLimit)
	if err != nil {
		log.Printf("[review] ListTopRatedReviews error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// Search 按菜名做大小写不敏感的子串搜索
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	if term == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": []*model.Review{}})
		return
	}

	reviews, err := h.store.SearchReviews(r.Context(), term)
	if err != nil {
		log.Printf("[review] SearchReviews error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to search reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
