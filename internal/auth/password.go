package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュのコストファクタ。
// 単一ハッシュのレイテンシが数十ミリ秒になる値に固定する。
const bcryptCost = 12

// hashPassword は平文パスワードをbcryptでハッシュ化する。
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword は平文パスワードと保存済みハッシュを照合する。
// bcryptの比較は秘密値に対して一定時間で、平文同士の比較は行わない。
// OAuth専用アカウントの番兵値はbcryptダイジェスト形式でないため常に失敗する。
func checkPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
