package auth

import "golang.org/x/crypto/bcrypt"

// HashModeratorKey bcrypt-hashes a moderator key for storage in the
// environment.
func HashModeratorKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyModeratorKey reports whether key matches the configured hash.
func VerifyModeratorKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
