package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier проверяет подпись платёжного события шлюза.
// Подпись = HMAC-SHA256(secret, "<gatewayOrderID>|<paymentID>") в hex.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
