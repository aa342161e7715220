package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when the configured cost is outside bcrypt's accepted range.
const DefaultBcryptCost = 10

// EncryptedPassword is the output of EncryptPassword. Salt is the bcrypt salt embedded in the hash.
type EncryptedPassword struct {
	HashedPassword string
	Salt           string
}

// EncryptPassword hashes a plaintext password with a fresh random salt.
func EncryptPassword(password string, cost int) (EncryptedPassword, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return EncryptedPassword{}, err
	}
	return EncryptedPassword{HashedPassword: string(hashed), Salt: bcryptSalt(hashed)}, nil
}

// VerifyPassword reports whether password matches the stored hash. A malformed hash never matches.
func VerifyPassword(password, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// bcrypt hashes look like $2a$10$<22 chars salt><31 chars digest>.
func bcryptSalt(hashed []byte) string {
	const saltStart, saltLen = 7, 22
	if len(hashed) < saltStart+saltLen {
		return ""
	}
	return string(hashed[saltStart : saltStart+saltLen])
}
