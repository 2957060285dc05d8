package bidxcli

import (
	"os"
	"path/filepath"
	"testing"

	"bibleidx/internal/config"
)

func TestParseDefaults(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{})
	_, opts, err := ExecuteForTest(cmd)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := config.Default()
	if opts.Config.Corpus != want.Corpus || opts.Config.Database != want.Database || opts.Config.Backend != want.Backend {
		t.Fatalf("Config=%+v", opts.Config)
	}
	if opts.Jsonl {
		t.Fatal("Jsonl should default to false")
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bidx.yaml")
	data := "corpus: kjv\ndatabase: file.db\nsearch:\n  mode: all-words\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--config", path, "-d", " flag.db ", "--log-level", "debug"})
	_, opts, err := ExecuteForTest(cmd)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if opts.Config.Corpus != "kjv" {
		t.Fatalf("Corpus=%q", opts.Config.Corpus)
	}
	if opts.Config.Database != "flag.db" {
		t.Fatalf("Database=%q", opts.Config.Database)
	}
	if opts.Config.Search.Mode != "all-words" || opts.Config.Log.Level != "debug" {
		t.Fatalf("Config=%+v", opts.Config)
	}
}

func TestInvalidOptionsAreErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("corpuss: typo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, args := range [][]string{
		{"--backend", "postgres"},
		{"--log-level", "loud"},
		{"--config", bad},
		{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		cmd := NewRootCommand()
		cmd.SetArgs(args)
		if _, _, err := ExecuteForTest(cmd); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestSplitReference(t *testing.T) {
	cases := []struct {
		args []string
		ref  string
		rest int
	}{
		{[]string{"John", "3:16", "so", "loved"}, "John 3:16", 2},
		{[]string{"1", "John", "4:8"}, "1 John 4:8", 0},
		{[]string{"Rom", "8:28", "all", "things"}, "Rom 8:28", 2},
	}
	for _, tc := range cases {
		ref, rest, err := splitReference(tc.args)
		if err != nil || ref != tc.ref || len(rest) != tc.rest {
			t.Fatalf("%v: ref=%q rest=%v err=%v", tc.args, ref, rest, err)
		}
	}
	if _, _, err := splitReference([]string{"nothing", "here"}); err == nil {
		t.Fatal("expected error")
	}
}
