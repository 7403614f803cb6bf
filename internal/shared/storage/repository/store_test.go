// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"testing"
	"time"

	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage"
	"flavorhood/internal/shared/storage/dbutil"
	sqlitedriver "flavorhood/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

// Compile-time interface check
var _ storage.PersistentStore = (*Store)(nil)

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.Equal(t, "datetime('now')", d.CurrentTimestamp())
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
	// 应去除 PG 类型转换
	assert.Equal(t, "UPDATE t SET role = ? WHERE id = ?",
		d.Rebind("UPDATE t SET role = $1::varchar WHERE id = $2"))
}

// ============================================================================
// User 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	user := &model.User{ID: "usr-1", Email: "a@x.com", Name: "Alice",
		Role: model.UserRoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateUser(ctx, user))

	// 邮箱唯一
	dup := &model.User{ID: "usr-2", Email: "a@x.com", Role: model.UserRoleUser,
		CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), storage.ErrDuplicate)

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "usr-1", got.ID)
	assert.Equal(t, model.UserRoleUser, got.Role)

	// 不存在的邮箱返回 (nil, nil)
	got, err = s.GetUserByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.UpdateUserRole(ctx, "usr-1", model.UserRoleAdmin))
	got, _ = s.GetUserByID(ctx, "usr-1")
	assert.Equal(t, model.UserRoleAdmin, got.Role)
	assert.True(t, got.IsAdmin())

	require.NoError(t, s.UpdateUserProfile(ctx, "usr-1", "Alice Liddell"))
	got, _ = s.GetUserByID(ctx, "usr-1")
	assert.Equal(t, "Alice Liddell", got.Name)

	assert.ErrorIs(t, s.UpdateUserRole(ctx, "usr-missing", model.UserRoleAdmin), storage.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, "usr-1"))
	assert.ErrorIs(t, s.DeleteUser(ctx, "usr-1"), storage.ErrNotFound)
}

// ============================================================================
// Review 测试
// ============================================================================

func seedReviews(t *testing.T, s *Store) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []*model.Review{
		{ID: "rev-1", Email: "a@x.com", FoodName: "Pho Bo", Category: "Vietnamese", Rating: 5, Body: "great", Date: base},
		{ID: "rev-2", Email: "a@x.com", FoodName: "Banh Mi", Category: "Vietnamese", Rating: 4, Date: base.Add(time.Minute)},
		{ID: "rev-3", Email: "b@x.com", FoodName: "Tonkotsu Ramen", Category: "Japanese", Rating: 3, Date: base.Add(2 * time.Minute)},
		{ID: "rev-4", Email: "b@x.com", FoodName: "Shoyu Ramen", Category: "Japanese", Rating: 5, Date: base.Add(3 * time.Minute)},
		{ID: "rev-5", Email: "c@x.com", FoodName: "Tacos", Category: "Mexican", Rating: 2, Date: base.Add(4 * time.Minute)},
	}
	for _, r := range seed {
		require.NoError(t, s.CreateReview(context.Background(), r), r.ID)
	}
}

func TestListReviewsFilterSortPage(t *testing.T) {
	s := newTestStore(t)
	seedReviews(t, s)
	ctx := context.Background()

	// 默认排序：按时间降序
	reviews, total, err := s.ListReviews(ctx, storage.ReviewQuery{Page: 1, Limit: 9})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, reviews, 5)
	assert.Equal(t, "rev-5", reviews[0].ID)

	// 评分降序
	reviews, _, err = s.ListReviews(ctx, storage.ReviewQuery{SortBy: "rating", Page: 1, Limit: 9})
	require.NoError(t, err)
	for i := 1; i < len(reviews); i++ {
		assert.LessOrEqual(t, reviews[i].Rating, reviews[i-1].Rating)
	}

	// 分页：page=2 limit=2 跳过前 2 条
	reviews, total, err = s.ListReviews(ctx, storage.ReviewQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "rev-3", reviews[0].ID)

	// 分类过滤 + 总数忽略分页
	reviews, total, err = s.ListReviews(ctx, storage.ReviewQuery{Category: "Japanese", Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, reviews, 1)

	// 大小写不敏感子串搜索
	reviews, total, err = s.ListReviews(ctx, storage.ReviewQuery{Search: "RAMEN", Page: 1, Limit: 9})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range reviews {
		assert.Contains(t, r.FoodName, "Ramen")
	}

	// 搜索 + 分类组合
	_, total, err = s.ListReviews(ctx, storage.ReviewQuery{Category: "Vietnamese", Search: "pho", Page: 1, Limit: 9})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestSearchReviews(t *testing.T) {
	s := newTestStore(t)
	seedReviews(t, s)
	ctx := context.Background()

	reviews, err := s.SearchReviews(ctx, "ban")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Banh Mi", reviews[0].FoodName)

	// 空搜索词 = 不过滤
	reviews, err = s.SearchReviews(ctx, "")
	require.NoError(t, err)
	assert.Len(t, reviews, 5)

	reviews, err = s.SearchReviews(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestTopRatedAndOwnReviews(t *testing.T) {
	s := newTestStore(t)
	seedReviews(t, s)
	ctx := context.Background()

	top, err := s.ListTopRatedReviews(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.EqualValues(t, 5, top[0].Rating)
	for i := 1; i < len(top); i++ {
		assert.LessOrEqual(t, top[i].Rating, top[i-1].Rating)
	}

	own, err := s.ListReviewsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, own, 2)
	// 最新在前
	assert.Equal(t, "rev-2", own[0].ID)
}

func TestReviewOwnership(t *testing.T) {
	s := newTestStore(t)
	seedReviews(t, s)
	ctx := context.Background()

	body := "updated body"
	// 属主更新
	matched, err := s.UpdateReview(ctx, "rev-1", "a@x.com", model.ReviewUpdate{Body: &body})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)
	got, _ := s.GetReview(ctx, "rev-1")
	assert.Equal(t, "updated body", got.Body)

	// 非属主更新命中零条
	matched, err = s.UpdateReview(ctx, "rev-1", "b@x.com", model.ReviewUpdate{Body: &body})
	require.NoError(t, err)
	assert.EqualValues(t, 0, matched)

	// 空更新不触库
	matched, err = s.UpdateReview(ctx, "rev-1", "a@x.com", model.ReviewUpdate{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, matched)

	// 非属主删除命中零条
	deleted, err := s.DeleteReview(ctx, "rev-1", "b@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	// 管理员删除不限定作者
	deleted, err = s.DeleteReview(ctx, "rev-1", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

// ============================================================================
// Favorite 测试
// ============================================================================

func TestFavoriteCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fav := &model.Favorite{ID: "fav-1", Email: "a@x.com", ReviewID: "rev-1",
		CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, s.CreateFavorite(ctx, fav))

	// 同一 (email, review_id) 重复插入被唯一约束拒绝
	dup := &model.Favorite{ID: "fav-2", Email: "a@x.com", ReviewID: "rev-1", CreatedAt: time.Now()}
	assert.ErrorIs(t, s.CreateFavorite(ctx, dup), storage.ErrDuplicate)

	// 其他用户收藏同一点评不受影响
	other := &model.Favorite{ID: "fav-3", Email: "b@x.com", ReviewID: "rev-1", CreatedAt: time.Now()}
	require.NoError(t, s.CreateFavorite(ctx, other))

	favorites, err := s.ListFavoritesByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "rev-1", favorites[0].ReviewID)

	// 非属主删除命中零条
	deleted, err := s.DeleteFavorite(ctx, "fav-1", "b@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	// 属主删除
	deleted, err = s.DeleteFavorite(ctx, "fav-1", "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
