package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Caller 已认证的调用方，由鉴权中间件解析 token 得到，显式传给每个受保护操作
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// Owns 资源归属检查
func (c Caller) Owns(ownerID string) bool {
	return c.UserID != "" && c.UserID == ownerID
}
