package domain

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ItemKind
		wantErr  bool
	}{
		{"droid", KindDroid, false},
		{"DROID", KindDroid, false},
		{" Enemy ", KindEnemy, false},
		{"obstacle", KindObstacle, false},
		{"flag", KindFlag, false},
		{"bullet", KindBullet, false},
		{"tree", KindUnknown, true},
		{"", KindUnknown, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if got != tt.expected {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.expected)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) err = %v, want ErrUnknownKind", tt.input, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ParseKind(%q) unexpected err %v", tt.input, err)
		}
	}
}

func TestItemKind_Behaviour(t *testing.T) {
	tests := []struct {
		kind    ItemKind
		name    string
		blocks  bool
		visible bool
	}{
		{KindDroid, "droid", true, true},
		{KindEnemy, "enemy", true, true},
		{KindObstacle, "obstacle", true, true},
		{KindFlag, "flag", false, true},
		{KindBullet, "bullet", false, false},
		{KindUnknown, "unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.kind.Blocks(); got != tt.blocks {
				t.Errorf("Blocks() = %v, want %v", got, tt.blocks)
			}
			if got := tt.kind.Visible(); got != tt.visible {
				t.Errorf("Visible() = %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestItemKind_Text(t *testing.T) {
	var k ItemKind
	if err := k.UnmarshalText([]byte("Flag")); err != nil || k != KindFlag {
		t.Fatalf("UnmarshalText = %v, %v", k, err)
	}
	b, err := KindEnemy.MarshalText()
	if err != nil || string(b) != "enemy" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	if _, err := KindUnknown.MarshalText(); err == nil {
		t.Fatal("unknown kind must not marshal")
	}
}
