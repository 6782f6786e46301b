package verification

import (
	"testing"

	"docverify-portal/internal/validation"
)

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if err := validation.ValidateCode(code); err != nil {
			t.Fatalf("GenerateCode() = %q: %v", code, err)
		}
	}
}

func TestGenerateCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, _ := GenerateCode()
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Errorf("20 codes produced %d distinct values", len(seen))
	}
}

func TestHashCode(t *testing.T) {
	h := HashCode("123456")
	if h != HashCode("123456") {
		t.Error("HashCode not deterministic")
	}
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h == HashCode("654321") {
		t.Error("different codes share a hash")
	}
}

func TestCodeMatches(t *testing.T) {
	stored := HashCode("123456")
	if !CodeMatches("123456", stored) {
		t.Error("CodeMatches rejected the issued code")
	}
	if CodeMatches("654321", stored) {
		t.Error("CodeMatches accepted a wrong code")
	}
	if CodeMatches("123456", "") {
		t.Error("CodeMatches accepted an empty hash")
	}
}
