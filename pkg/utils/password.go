package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost 测试中可调低以加速
var PasswordCost = bcrypt.DefaultCost

// bcrypt 只取前 72 字节，更长的直接拒绝，避免前缀相同的密码互通
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

func HashPassword(pw string) (string, error) {
	if len(pw) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	return string(b), err
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// NeedsRehash 旧哈希的 cost 与当前配置不一致时返回 true（登录成功后顺手升级）
func NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	return err == nil && cost != PasswordCost
}
