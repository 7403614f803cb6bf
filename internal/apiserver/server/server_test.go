package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flavorhood/internal/apiserver/auth"
	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage/driver/sqlite"
	"flavorhood/internal/shared/storage/repository"
)

const testSecret = "server-test-secret"

// newTestServer 搭建完整服务：内存 SQLite 存储 + JWT 校验 + 全部路由
func newTestServer(t *testing.T) (*httptest.Server, *repository.Store) {
	t.Helper()

	dialect := sqlite.NewDialect()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := dialect.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := repository.NewStore(db, dialect)
	handler := NewHandler(store, auth.NewJWTVerifier(testSecret))
	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := auth.SignToken(testSecret, email, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, method, url, bearer string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

// Prometheus 指标用默认注册表，Handler 只能构建一次，
// 因此所有服务级场景共用同一个测试服务。
func TestServer(t *testing.T) {
	srv, store := newTestServer(t)
	alice := token(t, "alice@example.com")
	bob := token(t, "bob@example.com")
	admin := token(t, "root@example.com")

	// 预置用户：管理员一名、普通用户两名
	seed := []struct {
		email string
		role  model.UserRole
	}{
		{"alice@example.com", model.UserRoleUser},
		{"bob@example.com", model.UserRoleUser},
		{"root@example.com", model.UserRoleAdmin},
	}
	for i, s := range seed {
		now := time.Now()
		err := store.CreateUser(t.Context(), &model.User{
			ID: fmt.Sprintf("usr-%d", i), Email: s.email, Role: s.role,
			CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("seed user %s: %v", s.email, err)
		}
	}

	t.Run("liveness", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("auth gate", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/reviews", "", map[string]string{"foodName": "Pho"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/users", alice, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/users", admin, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
		}
	})

	var reviewID string
	t.Run("review lifecycle", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/reviews", alice, map[string]interface{}{
			"foodName": "Pho", "category": "Vietnamese", "rating": 5,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create review: expected 201, got %d", resp.StatusCode)
		}
		var created model.Review
		decodeBody(t, resp, &created)
		if created.Email != "alice@example.com" {
			t.Errorf("author must come from the token, got %q", created.Email)
		}
		if created.Date.IsZero() {
			t.Error("expected server-stamped date")
		}
		reviewID = created.ID

		// 作者可见于 my-reviews
		resp = doJSON(t, http.MethodGet, srv.URL+"/my-reviews", alice, nil)
		var mine struct {
			Reviews []*model.Review `json:"reviews"`
		}
		decodeBody(t, resp, &mine)
		if len(mine.Reviews) != 1 {
			t.Fatalf("expected 1 own review, got %d", len(mine.Reviews))
		}

		// 他人不可见于 my-reviews
		resp = doJSON(t, http.MethodGet, srv.URL+"/my-reviews", bob, nil)
		decodeBody(t, resp, &mine)
		if len(mine.Reviews) != 0 {
			t.Errorf("expected no reviews for bob, got %d", len(mine.Reviews))
		}

		// 非作者更新匹配零行 → 404
		resp = doJSON(t, http.MethodPut, srv.URL+"/reviews/"+reviewID, bob, map[string]interface{}{"rating": 1})
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 for non-owner update, got %d", resp.StatusCode)
		}

		// 作者更新成功并返回更新后的文档
		resp = doJSON(t, http.MethodPut, srv.URL+"/reviews/"+reviewID, alice, map[string]interface{}{"rating": 4})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("owner update: expected 200, got %d", resp.StatusCode)
		}
		var updated model.Review
		decodeBody(t, resp, &updated)
		if updated.Rating != 4 {
			t.Errorf("expected rating 4, got %v", updated.Rating)
		}
	})

	t.Run("favorite lifecycle", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/favorites", bob, map[string]string{"reviewId": reviewID})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create favorite: expected 201, got %d", resp.StatusCode)
		}
		var created struct {
			Created  bool            `json:"created"`
			Favorite *model.Favorite `json:"favorite"`
		}
		decodeBody(t, resp, &created)

		// 重复收藏落在唯一索引上，按已收藏处理
		resp = doJSON(t, http.MethodPost, srv.URL+"/favorites", bob, map[string]string{"reviewId": reviewID})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("duplicate favorite: expected 200, got %d", resp.StatusCode)
		}
		var dup struct {
			Created bool `json:"created"`
		}
		decodeBody(t, resp, &dup)
		if dup.Created {
			t.Error("expected created=false for duplicate favorite")
		}

		// 非所有者删除 → 404
		resp = doJSON(t, http.MethodDelete, srv.URL+"/favorites/"+created.Favorite.ID, alice, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 for non-owner delete, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodDelete, srv.URL+"/favorites/"+created.Favorite.ID, bob, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("owner delete: expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("admin deletes any review", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, srv.URL+"/reviews/"+reviewID, admin, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 for admin delete, got %d", resp.StatusCode)
		}
	})

	t.Run("role endpoint is self-only", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/users/role/alice@example.com", alice, nil)
		var role map[string]string
		decodeBody(t, resp, &role)
		if role["role"] != "user" {
			t.Errorf("expected role user, got %q", role["role"])
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/users/role/alice@example.com", bob, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403 for another user's role, got %d", resp.StatusCode)
		}
	})
}
