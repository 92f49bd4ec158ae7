package regex

import (
	"errors"
	"testing"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		flags string
		want  FlagSet
	}{
		{"", 0},
		{"m", Multiline},
		{"i", CaseInsensitive | UnicodeCase},
		{"x", Extended},
		{"s", DotAll},
		{"mi", Multiline | CaseInsensitive | UnicodeCase},
		{"smix", Multiline | CaseInsensitive | UnicodeCase | Extended | DotAll},
		{"ii", CaseInsensitive | UnicodeCase},
	}
	for _, tt := range tests {
		got, err := ParseFlags(tt.flags)
		if err != nil {
			t.Fatalf("ParseFlags(%q) error: %v", tt.flags, err)
		}
		if got != tt.want {
			t.Fatalf("ParseFlags(%q) = %08b, want %08b", tt.flags, got, tt.want)
		}
	}
}

func TestParseFlagsCaseInsensitiveAlwaysUnicode(t *testing.T) {
	f, err := ParseFlags("i")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Has(CaseInsensitive) || !f.Has(UnicodeCase) {
		t.Fatalf("expected both case bits, got %08b", f)
	}
}

func TestParseFlagsInvalid(t *testing.T) {
	for _, tt := range []struct {
		flags string
		bad   rune
		pos   int
	}{
		{"z", 'z', 0},
		{"mq", 'q', 1},
		{"I", 'I', 0},
		{"m é", ' ', 1},
	} {
		_, err := ParseFlags(tt.flags)
		var fe *FlagError
		if !errors.As(err, &fe) {
			t.Fatalf("ParseFlags(%q): expected *FlagError, got %v", tt.flags, err)
		}
		if fe.Flag != tt.bad || fe.Position != tt.pos {
			t.Fatalf("ParseFlags(%q): got flag %q at %d, want %q at %d", tt.flags, fe.Flag, fe.Position, tt.bad, tt.pos)
		}
	}
}

func TestIsCaseSensitive(t *testing.T) {
	if !IsCaseSensitive("") || !IsCaseSensitive("mxs") {
		t.Fatal("expected case-sensitive without 'i'")
	}
	if IsCaseSensitive("mi") {
		t.Fatal("expected case-insensitive with 'i'")
	}
}

func TestFlagSetString(t *testing.T) {
	f, _ := ParseFlags("xsim")
	if got := f.String(); got != "misx" {
		t.Fatalf("String() = %q, want misx", got)
	}
}
