package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func parseArgs(t *testing.T, args ...string) (*commandLine, error) {
	t.Helper()
	cl := &commandLine{}
	cmd := &cobra.Command{
		Use:           "bpf-linker",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cl.inputs = args
			return nil
		},
	}
	cl.register(cmd)
	cmd.SetArgs(normalizeArgs(args))
	return cl, cmd.Execute()
}

func TestExportBeforeInputs(t *testing.T) {
	// --export followed by positional args must not swallow the inputs.
	cl, err := parseArgs(t,
		"--export", "foo",
		"--export", "bar",
		"symbols.o",
		"rcgu.o",
		"-L", "target/debug/deps",
		"-L", "target/debug",
		"-o", "/tmp/bin.s",
		"--target=bpf",
		"--emit=asm",
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	wantExport := []string{"foo", "bar"}
	if len(cl.export) != len(wantExport) {
		t.Fatalf("export: got %v, want %v", cl.export, wantExport)
	}
	for i := range wantExport {
		if cl.export[i] != wantExport[i] {
			t.Errorf("export[%d]: got %q, want %q", i, cl.export[i], wantExport[i])
		}
	}

	wantInputs := []string{"symbols.o", "rcgu.o"}
	if len(cl.inputs) != len(wantInputs) {
		t.Fatalf("inputs: got %v, want %v", cl.inputs, wantInputs)
	}
	for i := range wantInputs {
		if cl.inputs[i] != wantInputs[i] {
			t.Errorf("inputs[%d]: got %q, want %q", i, cl.inputs[i], wantInputs[i])
		}
	}
}

func TestExportCommaDelimited(t *testing.T) {
	cl, err := parseArgs(t,
		"--export", "foo,bar",
		"--export=ayy,lmao",
		"symbols.o",
		"--export=lol",
		"-o", "/tmp/bin.s",
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []string{"foo", "bar", "ayy", "lmao", "lol"}
	if len(cl.export) != len(want) {
		t.Fatalf("export: got %v, want %v", cl.export, want)
	}
	for i := range want {
		if cl.export[i] != want[i] {
			t.Errorf("export[%d]: got %q, want %q", i, cl.export[i], want[i])
		}
	}
}

func TestOptimizeLastWins(t *testing.T) {
	cl, err := parseArgs(t, "-O1", "-O3", "-o", "/tmp/bin.o", "prog.o")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cl.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if last := cl.optimize[len(cl.optimize)-1]; last != "3" {
		t.Errorf("last opt level: got %q, want %q", last, "3")
	}
}

func TestNormalizeArgs(t *testing.T) {
	got := normalizeArgs([]string{"-flavor", "wasm", "-o", "out.o", "in.o"})
	if got[0] != "--flavor" {
		t.Errorf("got %q, want --flavor", got[0])
	}
	for i, arg := range []string{"wasm", "-o", "out.o", "in.o"} {
		if got[i+1] != arg {
			t.Errorf("arg %d changed: got %q, want %q", i+1, got[i+1], arg)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad cpu", []string{"--cpu", "v9", "-o", "out.o", "in.o"}},
		{"bad emit", []string{"--emit", "elf", "-o", "out.o", "in.o"}},
		{"bad opt level", []string{"-O9", "-o", "out.o", "in.o"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := parseArgs(t, tt.args...)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := cl.validate(); err == nil {
				t.Error("validate accepted a bad value")
			}
		})
	}
}
