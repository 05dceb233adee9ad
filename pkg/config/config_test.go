package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ecmacore/pkg/errors"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[engine]
strict = true
builtins = ["Object", "Math"]

[heap]
max-objects = 500

[log]
verbosity = 2
file = "engine.log"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := &Config{
		Engine: Engine{Strict: true, Builtins: []string{"Object", "Math"}},
		Heap:   Heap{MaxObjects: 500},
		Log:    Log{Verbosity: 2, File: "engine.log"},
		Path:   path,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[engine\nstrict = true"},
		{"unknown key", "[engine]\nstrcit = true"},
		{"negative limit", "[heap]\nmax-objects = -1"},
		{"wrong type", "[heap]\nmax-objects = \"many\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, t.TempDir(), tt.content))
			var ce *errors.ConfigError
			if !stderrors.As(err, &ce) {
				t.Errorf("Expected ConfigError, got %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "[heap]\nmax-objects = 9\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}
	if c.Heap.MaxObjects != 9 || c.Path != filepath.Join(root, FileName) {
		t.Errorf("Expected the parent's file, got %+v", c)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvStrict:     "true",
		EnvMaxObjects: "42",
		EnvVerbosity:  "-1",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if !c.Engine.Strict || c.Heap.MaxObjects != 42 || c.Log.Verbosity != -1 {
		t.Errorf("Overrides not applied: %+v", c)
	}

	env[EnvStrict] = "maybe"
	if err := Default().ApplyEnv(lookup); err == nil {
		t.Error("Expected a bad boolean to be rejected")
	}
	env[EnvStrict] = "0"
	env[EnvMaxObjects] = "-5"
	if err := Default().ApplyEnv(lookup); err == nil {
		t.Error("Expected a negative limit to be rejected")
	}
}
