package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	return HashWithCost(plain, bcrypt.DefaultCost)
}

// HashWithCost 指定代价生成哈希（测试中使用 bcrypt.MinCost 加速）
func HashWithCost(plain string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验密码，比较过程为常量时间
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
