package repository

import (
	"context"

	"flavorhood/internal/shared/model"
)

// CreateFavorite 插入收藏
// (email, review_id) 唯一约束冲突由 wrapError 转换为 storage.ErrDuplicate
func (s *Store) CreateFavorite(ctx context.Context, fav *model.Favorite) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO favorites (id, email, review_id, created_at)
		 VALUES ($1, $2, $3, $4)`),
		fav.ID, fav.Email, fav.ReviewID, fav.CreatedAt,
	)
	return wrapError(err)
}

// ListFavoritesByEmail 列出指定用户的收藏，最新在前
func (s *Store) ListFavoritesByEmail(ctx context.Context, email string) ([]*model.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, email, review_id, created_at
		 FROM favorites WHERE email = $1 ORDER BY created_at DESC`), email)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	favorites := []*model.Favorite{}
	for rows.Next() {
		f := &model.Favorite{}
		if err := rows.Scan(&f.ID, &f.Email, &f.ReviewID, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// DeleteFavorite 属主限定删除，返回实际删除的行数
func (s *Store) DeleteFavorite(ctx context.Context, id, email string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM favorites WHERE id = $1 AND email = $2`), id, email)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}
