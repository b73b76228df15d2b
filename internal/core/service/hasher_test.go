package service

import "testing"

func TestHashPassword(t *testing.T) {
	tests := map[string]string{
		"pw123":    "23d47445adfb8991789b459b6ba1b974d727d310aa9d80b7c2875b9430c0ba25",
		"":         "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		"admin123": "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
		"secret":   "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b",
	}
	for in, want := range tests {
		if got := HashPassword(in); got != want {
			t.Fatalf("HashPassword(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	if HashPassword("pw123") != HashPassword("pw123") {
		t.Fatal("digest must be deterministic")
	}
	if HashPassword("pw123") == HashPassword("pw124") {
		t.Fatal("different inputs must differ")
	}
}
