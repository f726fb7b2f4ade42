package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Signer はセッションIDにHMAC-SHA256署名を付与・検証する。
// Cookie値は "<セッションID>.<base64url(HMAC)>" の形式。
type Signer struct {
	key []byte
}

// NewSigner は署名鍵からSignerを生成する。
func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

// Sign はセッションIDに署名を付与したCookie値を返す。
func (s *Signer) Sign(sessionID string) string {
	return sessionID + "." + base64.RawURLEncoding.EncodeToString(s.mac(sessionID))
}

// Verify はCookie値の署名を検証し、セッションIDを返す。
// 形式不正や署名不一致の場合はfalseを返す。
func (s *Signer) Verify(value string) (string, bool) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 || i == len(value)-1 {
		return "", false
	}
	sessionID, encoded := value[:i], value[i+1:]

	sig, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(sig, s.mac(sessionID)) {
		return "", false
	}
	return sessionID, true
}

func (s *Signer) mac(sessionID string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(sessionID))
	return h.Sum(nil)
}
