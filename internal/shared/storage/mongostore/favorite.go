package mongostore

import (
	"context"

	"flavorhood/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// FavoriteStore
// ============================================================================

// CreateFavorite 插入收藏
// (email, review_id) 唯一索引冲突由 wrapError 转换为 storage.ErrDuplicate
func (s *Store) CreateFavorite(ctx context.Context, fav *model.Favorite) error {
	return insertOne(ctx, s.col(ColFavorites), fav)
}

func (s *Store) ListFavoritesByEmail(ctx context.Context, email string) ([]*model.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Favorite](ctx, s.col(ColFavorites), bson.D{{Key: "email", Value: email}}, opts)
}

// DeleteFavorite 属主限定删除：过滤条件同时包含 _id 和属主邮箱
func (s *Store) DeleteFavorite(ctx context.Context, id, email string) (int64, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "email", Value: email}}
	res, err := s.col(ColFavorites).DeleteOne(ctx, filter)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}
