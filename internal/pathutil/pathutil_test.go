package pathutil

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "/"},
		{"/", "/"},
		{"//", "/"},
		{"a", "/a"},
		{"/a/", "/a"},
		{"/a//b", "/a/b"},
		{"//Legal///Contracts/", "/Legal/Contracts"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name   string
		parent *string
		child  string
		want   string
	}{
		{"nil parent is root level", nil, "Legal", "/Legal"},
		{"root parent collapses double slash", strPtr("/"), "Legal", "/Legal"},
		{"nested", strPtr("/Legal"), "NDA", "/Legal/NDA"},
		{"trailing slash on parent", strPtr("/Legal/"), "NDA", "/Legal/NDA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.parent, tt.child); got != tt.want {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParentAndBase(t *testing.T) {
	if p := Parent("/a"); p != nil {
		t.Errorf("Parent(/a) = %q, want nil", *p)
	}
	if p := Parent("/"); p != nil {
		t.Errorf("Parent(/) = %q, want nil", *p)
	}
	if p := Parent("/a/b/c"); p == nil || *p != "/a/b" {
		t.Errorf("Parent(/a/b/c) = %v, want /a/b", p)
	}
	if b := Base("/a/b/c"); b != "c" {
		t.Errorf("Base = %q, want c", b)
	}
	if b := Base("/"); b != "" {
		t.Errorf("Base(/) = %q, want empty", b)
	}
	if d := Depth("/a/b/c"); d != 3 {
		t.Errorf("Depth = %d, want 3", d)
	}
}

func TestIsDescendant(t *testing.T) {
	tests := []struct {
		path     string
		ancestor string
		want     bool
	}{
		{"/a/b", "/a", true},
		{"/a/b/c", "/a", true},
		{"/a", "/a", false},
		{"/ab", "/a", false},
		{"/ab/c", "/a", false},
		{"/a", "/a/b", false},
		{"/a", "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"_under_"+tt.ancestor, func(t *testing.T) {
			if got := IsDescendant(tt.path, tt.ancestor); got != tt.want {
				t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.path, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestReplacePrefix(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		oldPrefix string
		newPrefix string
		want      string
	}{
		{"self", "/a", "/a", "/b", "/b"},
		{"child", "/a/x", "/a", "/b", "/b/x"},
		{"deep", "/a/x/y", "/a", "/b/c", "/b/c/x/y"},
		{"sibling sharing prefix untouched", "/ab", "/a", "/b", "/ab"},
		{"sibling descendant untouched", "/ab/x", "/a", "/b", "/ab/x"},
		{"move to root level", "/p/a/x", "/p/a", "/a", "/a/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplacePrefix(tt.path, tt.oldPrefix, tt.newPrefix); got != tt.want {
				t.Errorf("ReplacePrefix(%q, %q, %q) = %q, want %q",
					tt.path, tt.oldPrefix, tt.newPrefix, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"Legal", "Q1 reports", "a.b"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) unexpected error: %v", name, err)
		}
	}

	invalid := []string{"", "   ", "a/b", ".", ".."}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) expected error", name)
		}
	}
}
