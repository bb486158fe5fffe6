package fonts

import (
	"bytes"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, src := range []string{"builtin:lmroman10-regular", "built-in:lmsans10-bold", "LMMono10-Regular"} {
		data, err := Load(src)
		if err != nil {
			t.Fatalf("Load(%q): %v", src, err)
		}
		// TrueType/OpenType 文件头
		if len(data) < 4 || !(bytes.Equal(data[:4], []byte{0, 1, 0, 0}) || string(data[:4]) == "OTTO" || string(data[:4]) == "true") {
			t.Fatalf("Load(%q) returned non-font data", src)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("builtin:comic-sans"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestNamesIncludesDefault(t *testing.T) {
	names := Names()
	if len(names) != len(builtin) {
		t.Fatalf("Names() = %v", names)
	}
	found := false
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Fatalf("names not sorted: %v", names)
		}
		if name == Default {
			found = true
		}
	}
	if !found {
		t.Fatalf("default font %s missing from %v", Default, names)
	}
	if !IsBuiltin("builtin:" + Default) || IsBuiltin("fonts/a.ttf") {
		t.Fatalf("IsBuiltin mismatch")
	}
}
