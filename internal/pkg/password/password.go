package password

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the shortest accepted password
	MinLength = 8
)

// Cost is the bcrypt cost used by Hash. Tests lower it.
var Cost = DefaultCost

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash. Besides bcrypt it accepts the
// werkzeug pbkdf2 and scrypt hashes written by the desktop client.
func Verify(password, hash string) bool {
	if IsLegacyHash(hash) {
		return verifyLegacy(password, hash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsLegacyHash reports whether s is a werkzeug "method$salt$hex" hash
func IsLegacyHash(s string) bool {
	return strings.HasPrefix(s, "pbkdf2:") || strings.HasPrefix(s, "scrypt:")
}

func verifyLegacy(password, encoded string) bool {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt := strings.Split(parts[0], ":"), parts[1]
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}

	var got []byte
	switch method[0] {
	case "pbkdf2":
		// pbkdf2:<digest>[:<iterations>]
		if len(method) < 2 {
			return false
		}
		var h func() hash.Hash
		switch method[1] {
		case "sha256":
			h = sha256.New
		case "sha512":
			h = sha512.New
		default:
			return false
		}
		iterations := 600000
		if len(method) > 2 {
			if iterations, err = strconv.Atoi(method[2]); err != nil || iterations < 1 {
				return false
			}
		}
		got = pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), h)
	case "scrypt":
		// scrypt:<n>:<r>:<p>
		if len(method) != 4 {
			return false
		}
		n, errN := strconv.Atoi(method[1])
		r, errR := strconv.Atoi(method[2])
		p, errP := strconv.Atoi(method[3])
		if errN != nil || errR != nil || errP != nil {
			return false
		}
		if got, err = scrypt.Key([]byte(password), []byte(salt), n, r, p, len(want)); err != nil {
			return false
		}
	default:
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

// IsHash reports whether s looks like a bcrypt hash.
// Synced users arrive with their hash already computed.
func IsHash(s string) bool {
	if _, err := bcrypt.Cost([]byte(s)); err != nil {
		return false
	}
	return strings.HasPrefix(s, "$2")
}

// HashToken hashes a token using SHA256 (for refresh tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) bool {
	return len([]rune(password)) >= MinLength
}
