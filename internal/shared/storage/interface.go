// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（文档库，主驱动）、repository/（SQL）
//   - 初始化时通过依赖注入传入实现，不使用包级全局连接
package storage

import (
	"context"

	"flavorhood/internal/shared/model"
)

// DefaultPageLimit 点评列表默认每页条数
const DefaultPageLimit = 9

// ReviewQuery 点评列表查询条件
//
// 由 HTTP 查询参数翻译而来，驱动负责转换为各自的过滤/排序/分页表达：
//   - Category: 精确匹配
//   - Search: 对 food name 的大小写不敏感子串匹配，空串表示不过滤
//   - SortBy: "rating" 按评分降序，其余一律按创建时间降序
//   - Page: 1 起始，调用方已保证 >= 1
//   - Limit: 调用方已保证 >= 1
type ReviewQuery struct {
	Category string
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

// Skip 返回分页偏移量
func (q ReviewQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserRole(ctx context.Context, id string, role model.UserRole) error
	UpdateUserProfile(ctx context.Context, id string, name string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ReviewStore 点评存储接口
//
// 属主限定的变更操作（UpdateReview/DeleteReview）返回实际命中的文档数：
// 过滤条件同时包含记录 ID 和请求者邮箱，非属主操作命中零条而不是报错。
type ReviewStore interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id string) (*model.Review, error)
	// ListReviews 返回一页结果和忽略分页的匹配总数
	ListReviews(ctx context.Context, q ReviewQuery) ([]*model.Review, int64, error)
	ListReviewsByEmail(ctx context.Context, email string) ([]*model.Review, error)
	ListTopRatedReviews(ctx context.Context, limit int) ([]*model.Review, error)
	SearchReviews(ctx context.Context, term string) ([]*model.Review, error)
	UpdateReview(ctx context.Context, id, email string, update model.ReviewUpdate) (int64, error)
	// DeleteReview email 为空串时不限定作者（管理员删除）
	DeleteReview(ctx context.Context, id, email string) (int64, error)
}

// FavoriteStore 收藏存储接口
type FavoriteStore interface {
	// CreateFavorite (email, review_id) 已存在时返回 ErrDuplicate
	CreateFavorite(ctx context.Context, fav *model.Favorite) error
	ListFavoritesByEmail(ctx context.Context, email string) ([]*model.Favorite, error)
	DeleteFavorite(ctx context.Context, id, email string) (int64, error)
}

// PersistentStore 持久化存储完整接口
type PersistentStore interface {
	UserStore
	ReviewStore
	FavoriteStore
	Close() error
}
