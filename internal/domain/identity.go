package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashEmployeeCode masks a submitter employee code for storage. The same hash
// serves as the identity proof when tracking a ticket by public code.
func HashEmployeeCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToUpper(code))))
	return hex.EncodeToString(sum[:])
}

// VerifyEmployeeCode compares a presented employee code against a stored hash
// in constant time.
func VerifyEmployeeCode(storedHash, presentedCode string) bool {
	presented := HashEmployeeCode(presentedCode)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(presented)) == 1
}
