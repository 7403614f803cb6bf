package model

import "time"

// Favorite 收藏
//
// review_id 是指向点评的软引用，存储层不做引用完整性约束，
// 点评被删除后允许悬挂。(email, review_id) 组合唯一，
// 由存储层唯一索引保证，并发的重复收藏只有一个能插入成功。
type Favorite struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Email     string    `json:"email" bson:"email" db:"email"`
	ReviewID  string    `json:"reviewId" bson:"review_id" db:"review_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
