package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{
			name:       "generate conversation ID",
			prefix:     "conv",
			length:     16,
			wantErr:    false,
			wantPrefix: "conv_",
		},
		{
			name:       "generate document ID",
			prefix:     "doc",
			length:     16,
			wantErr:    false,
			wantPrefix: "doc_",
		},
		{
			name:       "generate query record ID",
			prefix:     "qr",
			length:     24,
			wantErr:    false,
			wantPrefix: "qr_",
		},
		{
			name:    "reject zero length",
			prefix:  "test",
			length:  0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateSecureID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
			}
			expectedLen := len(tt.prefix) + 1 + tt.length
			if len(got) != expectedLen {
				t.Errorf("GenerateSecureID() length = %v, want %v", len(got), expectedLen)
			}
			suffix := got[len(tt.prefix)+1:]
			for _, char := range suffix {
				if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
					t.Errorf("GenerateSecureID() contains invalid character: %c", char)
				}
			}
		})
	}
}

func TestGenerateSecureIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := MustGenerateSecureID("conv", 24)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}
