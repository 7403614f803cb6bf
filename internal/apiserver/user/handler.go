// Package user 用户领域 - HTTP 处理
package user

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

// Store 用户存储接口
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserRole(ctx context.Context, id string, role model.UserRole) error
	UpdateUserProfile(ctx context.Context, id string, name string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Handler 用户领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建用户处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /users", mw.AdminOnly(h.List))
	mux.HandleFunc("GET /users/role/{email}", mw.Authenticated(h.GetRole))
	mux.HandleFunc("GET /users/{id}", h.Get)
	mux.HandleFunc("POST /users", h.Create)
	mux.HandleFunc("PATCH /users/admin/{id}", mw.AdminOnly(h.Promote))
	mux.HandleFunc("PUT /users/{id}", mw.AdminOnly(h.Update))
	mux.HandleFunc("DELETE /users/{id}", mw.AdminOnly(h.Delete))
}

// List 获取全部用户（仅管理员）
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[user] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetRole 查询角色（仅限本人）
// 路径邮箱与请求主体邮箱不一致时 403
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	principal := auth.GetPrincipal(r.Context())
	if principal.Email != email {
		writeError(w, http.StatusForbidden, "forbidden access")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Printf("[user] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": user.Role})
}

// Get 按 ID 查询用户
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		log.Printf("[user] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create 按邮箱幂等创建用户
//
// 首次登录时调用。邮箱已存在时不重复插入，返回 created=false；
// 与存在性检查并发竞争的插入由邮箱唯一索引兜底（ErrDuplicate 同样视为已存在）。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[user] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"created": false, "user": existing})
		return
	}

	now := time.Now()
	user := &model.User{
		ID:        generateID("usr"),
		Email:     req.Email,
		Name:      req.Name,
		Role:      model.UserRoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
			if err == nil && existing != nil {
				writeJSON(w, http.StatusOK, map[string]interface{}{"created": false, "user": existing})
				return
			}
		}
		log.Printf("[user] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	log.Printf("[user] User created: %s (%s)", user.Email, user.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"created": true, "user": user})
}

// Promote 提升为管理员（仅管理员）
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.UpdateUserRole(r.Context(), id, model.UserRoleAdmin); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[user] UpdateUserRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	log.Printf("[user] User promoted to admin: %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "user promoted to admin"})
}

// Update 更新用户资料（仅管理员）
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Name *string `json:"name,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.store.UpdateUserProfile(r.Context(), id, *req.Name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[user] UpdateUserProfile error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}

// Delete 删除用户（仅管理员）
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[user] DeleteUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	log.Printf("[user] User deleted: %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
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
