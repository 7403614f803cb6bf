package model

import "time"

// Review 美食点评
//
// email 和 date 由服务端在创建时写入，客户端提交的同名字段会被覆盖。
// API JSON 使用 camelCase（foodName），与原有客户端保持一致。
type Review struct {
	ID       string    `json:"id" bson:"_id" db:"id"`
	Email    string    `json:"email" bson:"email" db:"email"`
	FoodName string    `json:"foodName" bson:"food_name" db:"food_name"`
	Category string    `json:"category,omitempty" bson:"category,omitempty" db:"category"`
	Rating   float64   `json:"rating" bson:"rating" db:"rating"`
	Body     string    `json:"body,omitempty" bson:"body,omitempty" db:"body"`
	Date     time.Time `json:"date" bson:"date" db:"date"`
}

// ReviewUpdate 点评部分更新
// nil 字段不参与更新；作者邮箱和创建时间不可修改
type ReviewUpdate struct {
	FoodName *string  `json:"foodName,omitempty"`
	Category *string  `json:"category,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Body     *string  `json:"body,omitempty"`
}

// Empty 是否没有任何待更新字段
func (u ReviewUpdate) Empty() bool {
	return u.FoodName == nil && u.Category == nil && u.Rating == nil && u.Body == nil
}
