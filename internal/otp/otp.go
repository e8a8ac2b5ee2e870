package otp

import (
	"crypto/rand"
	"math/big"
)

const (
	min  = 100000
	span = 900000
)

// Generate возвращает шестизначный код подтверждения передачи (100000..999999).
// Уникальность нужна только в рамках «активный код на заказ и назначение»,
// поэтому генерация чистая, без состояния — сохраняет код вызывающий.
func Generate() int32 {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		panic(err) // crypto/rand.Reader не отказывает на поддерживаемых платформах
	}
	return int32(n.Int64()) + min
}
