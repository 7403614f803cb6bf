package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User 用户
//
// 首次登录时按邮箱幂等创建（create-if-absent），邮箱全局唯一。
// 身份认证由外部身份服务完成，本系统不保存任何凭据。
type User struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Email     string    `json:"email" bson:"email" db:"email"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty" db:"name"`
	Role      UserRole  `json:"role" bson:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
