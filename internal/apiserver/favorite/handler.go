// Package favorite 收藏领域 - HTTP 处理
package favorite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"flavorhood/internal/apiserver/auth"
	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage"
)

// Store 收藏存储接口
type Store interface {
	CreateFavorite(ctx context.Context, favorite *model.Favorite) error
	ListFavoritesByEmail(ctx context.Context, email string) ([]*model.Favorite, error)
	DeleteFavorite(ctx context.Context, id, email string) (int64, error)
}

// Handler 收藏领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建收藏处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册收藏相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /favorites", mw.Authenticated(h.Create))
	mux.HandleFunc("GET /my-favorites", mw.Authenticated(h.ListMine))
	mux.HandleFunc("DELETE /favorites/{id}", mw.Authenticated(h.Delete))
}

// Create 收藏点评
//
// (owner, reviewId) 去重交给存储层唯一索引，并发的重复收藏
// 只有一个能插入成功，其余命中重复错误并按已收藏处理。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReviewID string `json:"reviewId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReviewID == "" {
		writeError(w, http.StatusBadRequest, "reviewId is required")
		return
	}

	principal := auth.GetPrincipal(r.Context())
	favorite := &model.Favorite{
		ID:        generateID("fav"),
		Email:     principal.Email,
		ReviewID:  req.ReviewID,
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateFavorite(r.Context(), favorite); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"created": false})
			return
		}
		log.Printf("[favorite] CreateFavorite error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create favorite")
		return
	}

	log.Printf("[favorite] Favorite created: %s -> %s", favorite.Email, favorite.ReviewID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"created": true, "favorite": favorite})
}

// ListMine 列出当前用户的收藏
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())

	favorites, err := h.store.ListFavoritesByEmail(r.Context(), principal.Email)
	if err != nil {
		log.Printf("[favorite] ListFavoritesByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// Delete 取消收藏
// 删除条件绑定 ID 与所有者邮箱，非所有者的删除匹配零行返回 404
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	principal := auth.GetPrincipal(r.Context())

	deleted, err := h.store.DeleteFavorite(r.Context(), id, principal.Email)
	if err != nil {
		log.Printf("[favorite] DeleteFavorite error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete favorite")
		return
	}
	if deleted == 0 {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "favorite deleted"})
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
