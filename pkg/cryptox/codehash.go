package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for hashing redemption codes at rest. These are the
// RFC 9106 low-memory recommendations; redemption codes are random so the
// work factor matters less than for human passwords.
const (
	saltLength  = 16
	iterations  = 3
	memoryKiB   = 64 * 1024
	parallelism = 2
	keyLength   = 32
)

var ErrCodeMismatch = errors.New("cryptox: code does not match hash")

// HashCode generates a PHC-format Argon2id hash string including salt and
// parameters, for storing gift/redemption codes without the raw value.
func HashCode(code string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(code), salt, iterations, memoryKiB, parallelism, keyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memoryKiB, iterations, parallelism, b64Salt, b64Hash,
	), nil
}

// VerifyCode compares a plaintext code against a PHC-style Argon2id hash.
// Returns ErrCodeMismatch when the code is wrong, other errors for
// malformed hashes.
func VerifyCode(code, encodedHash string) error {
	var (
		mem, iters uint32
		par        uint8
		b64Salt    string
		b64Hash    string
	)

	n, err := fmt.Sscanf(encodedHash, "$argon2id$v=19$m=%d,t=%d,p=%d$%s",
		&mem, &iters, &par, &b64Salt)
	if err != nil || n != 4 {
		return errors.New("cryptox: invalid hash format")
	}

	// Sscanf's %s stops at whitespace only, so salt and hash arrive joined.
	for i := 0; i < len(b64Salt); i++ {
		if b64Salt[i] == '$' {
			b64Hash = b64Salt[i+1:]
			b64Salt = b64Salt[:i]
			break
		}
	}
	if b64Hash == "" {
		return errors.New("cryptox: invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(b64Salt)
	if err != nil {
		return fmt.Errorf("cryptox: invalid salt encoding: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(b64Hash)
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash encoding: %w", err)
	}

	got := argon2.IDKey([]byte(code), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrCodeMismatch
	}
	return nil
}
