package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "R001",
			wantMsg: "Cascade depth exceeded",
			wantCat: CategoryRuntime,
		},
		{
			name:    "protocol error",
			code:    "P061",
			wantMsg: "Invalid client message",
			wantCat: CategoryProtocol,
		},
		{
			name:    "storage error",
			code:    "S082",
			wantMsg: "Snapshot type mismatch",
			wantCat: CategoryStorage,
		},
		{
			name:    "unknown error code",
			code:    "R999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "reactive.json")
	if err.Message != `file "reactive.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
	if err.Error() != `file "reactive.json" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestReactiveError_ErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New("S081").Wrap(cause)
	want := "S081: Snapshot write failed: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R004") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	re := New("R001")
	if FromError(re, "R004") != re {
		t.Error("FromError should return ReactiveError as-is")
	}

	wrapped := fmt.Errorf("outer: %w", re)
	if FromError(wrapped, "R004") != re {
		t.Error("FromError should find a ReactiveError in the chain")
	}

	std := stderrors.New("boom")
	got := FromError(std, "R004")
	if got.Code != "R004" || got.Wrapped != std {
		t.Errorf("FromError(std) = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("R001")
	outer := New("R004").Wrap(fmt.Errorf("cascade: %w", inner))

	if !HasCode(outer, "R004") {
		t.Error("outer code should match")
	}
	if !HasCode(outer, "R001") {
		t.Error("nested code should match")
	}
	if HasCode(outer, "C120") {
		t.Error("unrelated code should not match")
	}
	if HasCode(stderrors.New("plain"), "R001") {
		t.Error("plain error has no code")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R001").
		WithDetail("effect re-entered too deeply").
		WithSuggestion("Break the write cycle").
		Wrap(stderrors.New("depth 65"))

	out := err.Format()
	for _, want := range []string{
		"ERROR R001: Cascade depth exceeded",
		"effect re-entered too deeply",
		"Cause: depth 65",
		"Hint: Break the write cycle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("C141").FormatCompact(); got != "C141: Configuration file not found" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := (&ReactiveError{Message: "plain"}).FormatCompact(); got != "plain" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("P061").WithSuggestion("send {\"op\":\"inc\"}").Wrap(stderrors.New("bad json"))

	var decoded map[string]string
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "P061" {
		t.Errorf("code = %q", decoded["code"])
	}
	if decoded["category"] != string(CategoryProtocol) {
		t.Errorf("category = %q", decoded["category"])
	}
	if decoded["cause"] != "bad json" {
		t.Errorf("cause = %q", decoded["cause"])
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	want := []string{"one two", "three", "four five", "six"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("load: %w", New("C141")))
	if !strings.Contains(buf.String(), "ERROR C141") {
		t.Errorf("Fprint() = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestLookup(t *testing.T) {
	tpl, ok := Lookup("R003")
	if !ok || tpl.Message != "Owner disposed" {
		t.Errorf("Lookup(R003) = %+v, %v", tpl, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup should miss unknown codes")
	}
}
