package mongostore

import (
	"context"
	"regexp"

	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ReviewStore
// ============================================================================

func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	return insertOne(ctx, s.col(ColReviews), review)
}

func (s *Store) GetReview(ctx context.Context, id string) (*model.Review, error) {
	return findOne[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "_id", Value: id}})
}

// searchFilter 对 food_name 的大小写不敏感子串匹配
// term 经过 QuoteMeta 转义，用户输入不会被解释为正则元字符
func searchFilter(term string) bson.E {
	return bson.E{Key: "food_name", Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(term)},
		{Key: "$options", Value: "i"},
	}}
}

// listFilter 将 ReviewQuery 翻译为 Mongo 过滤器
func listFilter(q storage.ReviewQuery) bson.D {
	filter := bson.D{}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if q.Search != "" {
		filter = append(filter, searchFilter(q.Search))
	}
	return filter
}

// listSort 翻译排序条件：rating 按评分降序，其余按创建时间降序
func listSort(sortBy string) bson.D {
	if sortBy == "rating" {
		return bson.D{{Key: "rating", Value: -1}}
	}
	return bson.D{{Key: "date", Value: -1}}
}

// ListReviews 返回一页点评和忽略分页的匹配总数
func (s *Store) ListReviews(ctx context.Context, q storage.ReviewQuery) ([]*model.Review, int64, error) {
	filter := listFilter(q)

	total, err := s.col(ColReviews).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	opts := options.Find().
		SetSort(listSort(q.SortBy)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))
	reviews, err := findMany[model.Review](ctx, s.col(ColReviews), filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *Store) ListReviewsByEmail(ctx context.Context, email string) ([]*model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findMany[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "email", Value: email}}, opts)
}

func (s *Store) ListTopRatedReviews(ctx context.Context, limit int) ([]*model.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(int64(limit))
	return findMany[model.Review](ctx, s.col(ColReviews), bson.D{}, opts)
}

func (s *Store) SearchReviews(ctx context.Context, term string) ([]*model.Review, error) {
	filter := bson.D{}
	if term != "" {
		filter = append(filter, searchFilter(term))
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findMany[model.Review](ctx, s.col(ColReviews), filter, opts)
}

// UpdateReview 属主限定更新：过滤条件同时包含 _id 和作者邮箱，
// 非属主的更新命中零条文档。返回实际命中数。
func (s *Store) UpdateReview(ctx context.Context, id, email string, update model.ReviewUpdate) (int64, error) {
	set := bson.D{}
	if update.FoodName != nil {
		set = append(set, bson.E{Key: "food_name", Value: *update.FoodName})
	}
	if update.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *update.Category})
	}
	if update.Rating != nil {
		set = append(set, bson.E{Key: "rating", Value: *update.Rating})
	}
	if update.Body != nil {
		set = append(set, bson.E{Key: "body", Value: *update.Body})
	}
	if len(set) == 0 {
		return 0, nil
	}

	filter := bson.D{{Key: "_id", Value: id}, {Key: "email", Value: email}}
	res, err := s.col(ColReviews).UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.MatchedCount, nil
}

// DeleteReview email 为空串时不限定作者（管理员删除任意点评）
func (s *Store) DeleteReview(ctx context.Context, id, email string) (int64, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if email != "" {
		filter = append(filter, bson.E{Key: "email", Value: email})
	}
	res, err := s.col(ColReviews).DeleteOne(ctx, filter)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}
