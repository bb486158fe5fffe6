package binding

import (
	"encoding/json"
	"testing"
)

func TestInterpolateJSONData(t *testing.T) {
	var data any
	if err := json.Unmarshal([]byte(`{"user":{"name":"Ann","tags":["a","b"]},"count":3,"ratio":0.5}`), &data); err != nil {
		t.Fatal(err)
	}
	cases := map[string]string{
		"Hi ${user.name}":          "Hi Ann",
		"${user.tags[1]}":          "b",
		"${count} items":           "3 items",
		"${ratio}":                 "0.5",
		"${ user.name }":           "Ann",
		"${user.missing}":          "${user.missing}",
		"${user.tags[9]}":          "${user.tags[9]}",
		"${user.missing|guest}":    "guest",
		"${user.name|guest}":       "Ann",
		"no placeholders":          "no placeholders",
		"${user.tags[x]}":          "${user.tags[x]}",
		"${count}/${user.tags[0]}": "3/a",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("nil data should keep placeholder, got %q", got)
	}
	if got := Interpolate("${a|x}", nil); got != "x" {
		t.Fatalf("fallback should apply without data, got %q", got)
	}
}

type badge struct {
	Label string `json:"label"`
	Level int
	hidden string
}

func TestLookupStructsAndTypedContainers(t *testing.T) {
	data := map[string]any{
		"badges": []badge{{Label: "new", Level: 2, hidden: "x"}},
		"counts": map[string]int{"open": 4},
		"ptr":    &badge{Label: "p"},
	}
	cases := map[string]string{
		"${badges[0].label}":  "new",
		"${badges[0].Label}":  "new",
		"${badges[0].Level}":  "2",
		"${badges[0].hidden}": "${badges[0].hidden}",
		"${counts.open}":      "4",
		"${ptr.label}":        "p",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if _, ok := Lookup(map[string]any{"a": nil}, "a"); ok {
		t.Fatalf("nil value should not resolve")
	}
}
