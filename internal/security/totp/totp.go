// Package totp genera códigos RFC 6238 del lado del cliente a partir del
// secreto base32 aprovisionado. Permite usar el CLI como autenticador
// (`eventapp totp <secret>`) y que los tests generen códigos válidos.
// La verificación es siempre del servidor; acá no hay anti-replay.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	digits = 6
	period = 30
)

// Code genera el código vigente para el secreto base32 (sin padding).
func Code(secretB32 string, t time.Time) (string, error) {
	raw, err := decodeSecret(secretB32)
	if err != nil {
		return "", err
	}
	return gen(raw, t.Unix()/period), nil
}

// Remaining retorna los segundos de vigencia que le quedan al código actual.
func Remaining(t time.Time) int {
	return period - int(t.Unix()%period)
}

func decodeSecret(s string) ([]byte, error) {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, " ", "")))
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("totp: secreto base32 inválido: %w", err)
	}
	return raw, nil
}

// gen implementa HOTP(K, C) con HMAC-SHA1 (RFC 4226 / 6238).
func gen(secretRaw []byte, counter int64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, secretRaw)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	otp := bin % int(math.Pow10(digits))
	return fmt.Sprintf("%0*d", digits, otp)
}
