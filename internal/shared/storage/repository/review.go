package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flavorhood/internal/shared/model"
	"flavorhood/internal/shared/storage"
)

const reviewColumns = `id, email, food_name, category, rating, body, date`

// CreateReview 创建点评
func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO reviews (id, email, food_name, category, rating, body, date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`),
		review.ID, review.Email, review.FoodName, review.Category,
		review.Rating, review.Body, review.Date,
	)
	return wrapError(err)
}

// GetReview 通过 ID 查找点评
func (s *Store) GetReview(ctx context.Context, id string) (*model.Review, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`), id)
	review := &model.Review{}
	err := row.Scan(&review.ID, &review.Email, &review.FoodName, &review.Category,
		&review.Rating, &review.Body, &review.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err)
	}
	return review, nil
}

// listWhere 将 ReviewQuery 翻译为 WHERE 子句和参数
// 占位符序号从 1 开始，由 Rebind 转换为目标方言
func listWhere(q storage.ReviewQuery) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(food_name) LIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func listOrder(sortBy string) string {
	if sortBy == "rating" {
		return " ORDER BY rating DESC"
	}
	return " ORDER BY date DESC"
}

// ListReviews 返回一页点评和忽略分页的匹配总数
func (s *Store) ListReviews(ctx context.Context, q storage.ReviewQuery) ([]*model.Review, int64, error) {
	where, args := listWhere(q)

	var total int64
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM reviews`+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	pageArgs := append(args, q.Limit, q.Skip())
	query := fmt.Sprintf(`SELECT %s FROM reviews%s%s LIMIT $%d OFFSET $%d`,
		reviewColumns, where, listOrder(q.SortBy), len(args)+1, len(args)+2)
	reviews, err := s.queryReviews(ctx, s.rebind(query), pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListReviewsByEmail 列出指定作者的点评，最新在前
func (s *Store) ListReviewsByEmail(ctx context.Context, email string) ([]*model.Review, error) {
	return s.queryReviews(ctx, s.rebind(
		`SELECT `+reviewColumns+` FROM reviews WHERE email = $1 ORDER BY date DESC`), email)
}

// ListTopRatedReviews 按评分降序返回前 limit 条
func (s *Store) ListTopRatedReviews(ctx context.Context, limit int) ([]*model.Review, error) {
	return s.queryReviews(ctx, s.rebind(
		`SELECT `+reviewColumns+` FROM reviews ORDER BY rating DESC LIMIT $1`), limit)
}

// SearchReviews 对 food name 的大小写不敏感子串匹配，空串返回全部
func (s *Store) SearchReviews(ctx context.Context, term string) ([]*model.Review, error) {
	if term == "" {
		return s.queryReviews(ctx, s.rebind(
			`SELECT ` + reviewColumns + ` FROM reviews ORDER BY date DESC`))
	}
	return s.queryReviews(ctx, s.rebind(
		`SELECT `+reviewColumns+` FROM reviews
		 WHERE LOWER(food_name) LIKE $1 ORDER BY date DESC`),
		"%"+strings.ToLower(term)+"%")
}

// UpdateReview 属主限定更新，返回实际命中的行数
func (s *Store) UpdateReview(ctx context.Context, id, email string, update model.ReviewUpdate) (int64, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.FoodName != nil {
		add("food_name", *update.FoodName)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Rating != nil {
		add("rating", *update.Rating)
	}
	if update.Body != nil {
		add("body", *update.Body)
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id, email)
	query := fmt.Sprintf(`UPDATE reviews SET %s WHERE id = $%d AND email = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}

// DeleteReview email 为空串时不限定作者（管理员删除）
func (s *Store) DeleteReview(ctx context.Context, id, email string) (int64, error) {
	var res sql.Result
	var err error
	if email == "" {
		res, err = s.db.ExecContext(ctx, s.rebind(`DELETE FROM reviews WHERE id = $1`), id)
	} else {
		res, err = s.db.ExecContext(ctx, s.rebind(
			`DELETE FROM reviews WHERE id = $1 AND email = $2`), id, email)
	}
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...interface{}) ([]*model.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	reviews := []*model.Review{}
	for rows.Next() {
		review := &model.Review{}
		if err := rows.Scan(&review.ID, &review.Email, &review.FoodName, &review.Category,
			&review.Rating, &review.Body, &review.Date); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
