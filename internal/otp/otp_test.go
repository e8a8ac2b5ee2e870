package otp

import "testing"

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Generate()
		if v < 100000 || v > 999999 {
			t.Fatalf("otp out of six-digit range: %d", v)
		}
	}
}
