package di

import "testing"

func TestDiagnosticsCollects(t *testing.T) {
	var d Diagnostics

	d.Warnf("lib.rs", 10, "Foo", "data-carrying enum: not emitting type info")
	d.Warnf("main.rs", 3, "Bar", "data-carrying enum: not emitting type info")

	events := d.Events()
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	first := events[0]
	if first.Level != LevelWarning || first.File != "lib.rs" || first.Line != 10 || first.Type != "Foo" {
		t.Errorf("unexpected first event: %+v", first)
	}

	if got := len(d.Warnings()); got != 2 {
		t.Errorf("warnings: got %d, want 2", got)
	}
	if d.HasErrors() {
		t.Error("warnings alone reported as errors")
	}
}

func TestDiagnosticsErrors(t *testing.T) {
	var d Diagnostics

	d.Errorf("lib.rs", 42, "Baz", "unsupported node shape")

	if !d.HasErrors() {
		t.Error("error event not reported by HasErrors")
	}
	if got := len(d.Warnings()); got != 0 {
		t.Errorf("warnings: got %d, want 0", got)
	}
	if got := d.Events()[0].Level.String(); got != "error" {
		t.Errorf("level string: got %q, want %q", got, "error")
	}
}

func TestDiagnosticsZeroValue(t *testing.T) {
	var d Diagnostics
	if d.HasErrors() || len(d.Events()) != 0 {
		t.Error("zero value not empty")
	}
}
