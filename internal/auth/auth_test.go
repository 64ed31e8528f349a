package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAuthFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write auth file: %v", err)
	}
	return path
}

func TestToken_KeyPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"api_key preferred", `{"api_key":"sk-aaa","token":"sk-bbb"}`, "sk-aaa"},
		{"token fallback", `{"token":"sk-bbb","access_token":"sk-ccc"}`, "sk-bbb"},
		{"access_token last", `{"access_token":"sk-ccc"}`, "sk-ccc"},
		{"no recognized key", `{"refresh_token":"sk-ddd"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAuthFile(t, tt.content)
			if got := Token(path, nil); got != tt.want {
				t.Errorf("Token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToken_MissingFileIsEmptyNotError(t *testing.T) {
	if got := Token(filepath.Join(t.TempDir(), "absent.json"), nil); got != "" {
		t.Errorf("Token for missing file = %q, want empty", got)
	}
}

func TestToken_MalformedJSON(t *testing.T) {
	path := writeAuthFile(t, "{not json")
	if got := Token(path, nil); got != "" {
		t.Errorf("Token for malformed file = %q, want empty", got)
	}
}
