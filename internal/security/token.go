package security

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// IssueToken mints a bearer token for a user: base64(userID|expiryUnix|sig)
// where sig covers "userID|expiryUnix". No server-side session state — the
// signature is the only proof of authenticity.
func (kp *Keypair) IssueToken(userID string, ttl time.Duration) string {
	expiry := time.Now().Add(ttl).Unix()
	msg := fmt.Sprintf("%s|%d", userID, expiry)
	sig := ed25519.Sign(kp.Private, []byte(msg))
	raw := fmt.Sprintf("%s|%s", msg, base64.RawURLEncoding.EncodeToString(sig))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// VerifyToken checks a token's signature and expiry, returning the user id it
// was issued for. Returns domain.ErrInvalidToken for anything malformed,
// tampered, or expired.
func (kp *Keypair) VerifyToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", domain.ErrInvalidToken
	}
	userID, expiryStr, sigStr := parts[0], parts[1], parts[2]

	sig, err := base64.RawURLEncoding.DecodeString(sigStr)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	msg := fmt.Sprintf("%s|%s", userID, expiryStr)
	if !ed25519.Verify(kp.Public, []byte(msg), sig) {
		return "", domain.ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}
