package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== RESET TOKEN ====================

// GenerateResetToken returns the plain token to hand to the user and the
// sha256 digest to persist.
func GenerateResetToken() (plain, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read random bytes: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, HashResetToken(plain), nil
}

// HashResetToken digests a reset token for lookup
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ==================== FILE NAME ====================

// GenerateFileName derives a never-reused object name: <prefix>-<uuid>-<millis><ext>
func GenerateFileName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s-%d%s", prefix, uuid.NewString(), time.Now().UnixMilli(), ext)
}
