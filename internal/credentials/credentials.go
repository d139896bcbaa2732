// Package credentials hashes and verifies passwords and decodes HTTP Basic
// authorization headers.
package credentials

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const basicPrefix = "Basic "

// HashPassword returns a salted bcrypt digest. Every call uses a fresh salt,
// so two digests of the same password differ.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword reports whether password matches digest. A malformed digest
// is a mismatch.
func VerifyPassword(password string, digest []byte) bool {
	if len(digest) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}

// DecodeBasic extracts the user id and password from an Authorization header
// value of the form "Basic base64(userid:password)". The decoded text is
// split on the first colon, so passwords may contain colons.
func DecodeBasic(header string) (userID, password string, ok bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(header[len(basicPrefix):])
	if err != nil || !utf8.Valid(raw) {
		return "", "", false
	}
	userID, password, ok = strings.Cut(string(raw), ":")
	if !ok {
		return "", "", false
	}
	return userID, password, true
}
