package formatting_test

import (
	"encoding/base64"
	"testing"

	"github.com/JaimeStill/docket/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"1KB", 1024, false},
		{"20MB", 20 * 1024 * 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{"100 MB", 100 * 1024 * 1024, false},
		{"  50MB  ", 50 * 1024 * 1024, false},
		{"", 0, true},
		{"50XX", 0, true},
		{"MB", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0 B"},
		{500, 0, "500 B"},
		{20 * 1024 * 1024, 0, "20 MB"},
		{1536 * 1024, 1, "1.5 MB"},
		{1024, -1, "1 KB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}

func TestDecodedLen(t *testing.T) {
	for _, raw := range []string{"", "a", "ab", "abc", "abcd", "%PDF-1.7 sample body"} {
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))
		if got := formatting.DecodedLen(encoded); got != int64(len(raw)) {
			t.Errorf("DecodedLen(%q) = %d, want %d", encoded, got, len(raw))
		}
	}
}
