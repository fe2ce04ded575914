package discovery

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/wpals0817-max/policenthief/internal/statestore"
)

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := GenerateCode()
		testutil.AssertEqual(t, "length", len(code), CodeLength)
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Errorf("expected mostly distinct codes, got %d distinct out of 100", len(seen))
	}
}

func TestUniqueCode(t *testing.T) {
	repo := statestore.NewMemoryRepository()
	code, err := UniqueCode(repo, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "length", len(code), CodeLength)
}

func TestInviteLink(t *testing.T) {
	tests := map[string]struct {
		base string
		exp  string
	}{
		"plain base":     {base: "https://pnt.example.com", exp: "https://pnt.example.com/join/ABC234"},
		"trailing slash": {base: "https://pnt.example.com/", exp: "https://pnt.example.com/join/ABC234"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "link", InviteLink(tt.base, "ABC234"), tt.exp)
		})
	}
}

func TestInviteQR(t *testing.T) {
	png, err := InviteQR("https://pnt.example.com", "ABC234", 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected png bytes")
	}
	testutil.AssertEqual(t, "png magic", string(png[1:4]), "PNG")
}
