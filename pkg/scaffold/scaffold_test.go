package scaffold

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nullslate/nullslate/pkg/version"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single", input: "name: {{project_name}}", want: "name: my-app"},
		{name: "none", input: "no placeholders here", want: "no placeholders here"},
		{name: "multiple", input: "{{project_name}} and {{project_name}}", want: "my-app and my-app"},
		{name: "case sensitive", input: "{{Project_Name}}", want: "{{Project_Name}}"},
		{name: "spaced", input: "{{ project_name }}", want: "{{ project_name }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.input, "my-app"); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	binary := []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe, '{', '{', 'p', 'r', 'o', 'j', 'e', 'c', 't', '_', 'n', 'a', 'm', 'e', '}', '}'}

	fsys := fstest.MapFS{
		"package.json":               {Data: []byte(`{"name": "{{project_name}}"}`)},
		"README.md":                  {Data: []byte("# {{project_name}}\n\n{{project_name}} is new.\n")},
		"public/logo.png":            {Data: binary},
		"scripts/setup.sh":           {Data: []byte("#!/bin/sh\n"), Mode: 0o755},
		"template.json":              {Data: []byte(`{"name": "app"}`)},
		"docs/template.json":         {Data: []byte("nested, not reserved")},
		".git/HEAD":                  {Data: []byte("ref: refs/heads/main\n")},
		"src/routes/docs/index.tsx":  {Data: []byte("docs")},
		"src/routes/docs/[slug].tsx": {Data: []byte("docs")},
		"src/routes/docsx/page.tsx":  {Data: []byte("kept")},
		"src/lib/auth.ts":            {Data: []byte("auth")},
		"src/lib/auth.config.ts":     {Data: []byte("kept")},
		"src/empty":                  {Mode: fs.ModeDir | 0o755},
	}

	dest := filepath.Join(t.TempDir(), "my-app")
	rules := []string{"src/routes/docs", "src/lib/auth.ts"}

	result, err := Materialize(fsys, ".", dest, "my-app", rules)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "README.md")); got != "# my-app\n\nmy-app is new.\n" {
		t.Errorf("README.md = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "package.json")); strings.Contains(got, Placeholder) {
		t.Errorf("package.json still has placeholder: %s", got)
	}

	png := readFile(t, filepath.Join(dest, "public", "logo.png"))
	if !bytes.Equal([]byte(png), binary) {
		t.Errorf("binary file changed: %v", []byte(png))
	}

	info, err := os.Stat(filepath.Join(dest, "scripts", "setup.sh"))
	if err != nil {
		t.Fatalf("stat setup.sh: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("setup.sh lost its executable bit: %v", info.Mode())
	}

	for _, rel := range []string{"template.json", ".git", "src/routes/docs", "src/lib/auth.ts"} {
		if exists(filepath.Join(dest, filepath.FromSlash(rel))) {
			t.Errorf("%s should not be materialized", rel)
		}
	}
	for _, rel := range []string{"docs/template.json", "src/routes/docsx/page.tsx", "src/lib/auth.config.ts", "src/empty"} {
		if !exists(filepath.Join(dest, filepath.FromSlash(rel))) {
			t.Errorf("%s should be materialized", rel)
		}
	}

	for _, rel := range []string{"template.json", ".git", "src/routes/docs", "src/lib/auth.ts"} {
		if !slices.Contains(result.Skipped, rel) {
			t.Errorf("result.Skipped missing %s: %v", rel, result.Skipped)
		}
	}
	if slices.Contains(result.Files, "src/routes/docs/index.tsx") {
		t.Error("skipped directory contents reported as written")
	}
}

func TestMaterialize_Subdirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"repo/template/index.ts":      {Data: []byte("export const name = \"{{project_name}}\"\n")},
		"repo/template/template.json": {Data: []byte(`{}`)},
		"repo/fullstack/Cargo.toml":   {Data: []byte("name = \"{{project_name}}\"\n")},
	}

	dest := t.TempDir()
	if _, err := Materialize(fsys, "repo/template", dest, "lib", nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "index.ts")); got != "export const name = \"lib\"\n" {
		t.Errorf("index.ts = %q", got)
	}
	if exists(filepath.Join(dest, "template.json")) {
		t.Error("template.json copied from subdirectory root")
	}
	if exists(filepath.Join(dest, "Cargo.toml")) {
		t.Error("files outside root copied")
	}
}

func TestMaterialize_ExcludeAndIgnore(t *testing.T) {
	fsys := fstest.MapFS{
		"src/main.ts":           {Data: []byte("main")},
		"fullstack/Cargo.toml":  {Data: []byte("overlay")},
		"node_modules/x/i.js":   {Data: []byte("dep")},
		"src/main.test.ts":      {Data: []byte("test")},
		"src/nested/a.test.ts":  {Data: []byte("test")},
		"src/nested/a.ts":       {Data: []byte("a")},
		"fullstackish/keep.txt": {Data: []byte("keep")},
	}

	dest := t.TempDir()
	_, err := Materialize(fsys, ".", dest, "x", nil,
		WithExclude("fullstack"),
		WithIgnore("node_modules/**", "**/*.test.ts"),
	)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	for _, rel := range []string{"fullstack", "node_modules/x/i.js", "src/main.test.ts", "src/nested/a.test.ts"} {
		if exists(filepath.Join(dest, filepath.FromSlash(rel))) {
			t.Errorf("%s should be left out", rel)
		}
	}
	for _, rel := range []string{"src/main.ts", "src/nested/a.ts", "fullstackish/keep.txt"} {
		if !exists(filepath.Join(dest, filepath.FromSlash(rel))) {
			t.Errorf("%s should be copied", rel)
		}
	}
}

func TestMaterialize_WriteError(t *testing.T) {
	fsys := fstest.MapFS{
		"a.txt": {Data: []byte("a")},
	}

	dest := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(dest, []byte("in the way"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := Materialize(fsys, ".", dest, "x", nil); err == nil {
		t.Fatal("expected error when dest is a file")
	}
}

func TestOpenFS(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		wantBase string
		wantName string
		wantErr  bool
	}{
		{
			name: "root template",
			fsys: fstest.MapFS{
				"package.json":  {Data: []byte("{}")},
				"template.json": {Data: []byte(`{"name": "app", "min_version": "0.1.0"}`)},
			},
			wantBase: ".",
			wantName: "app",
		},
		{
			name: "template subdirectory",
			fsys: fstest.MapFS{
				"template/package.json":  {Data: []byte("{}")},
				"template/template.json": {Data: []byte(`{"name": "sub"}`)},
				"README.md":              {Data: []byte("repo readme")},
			},
			wantBase: "template",
			wantName: "sub",
		},
		{
			name: "metadata at repository root",
			fsys: fstest.MapFS{
				"template/package.json": {Data: []byte("{}")},
				"template.json":         {Data: []byte(`{"name": "outer"}`)},
			},
			wantBase: "template",
			wantName: "outer",
		},
		{
			name: "no metadata",
			fsys: fstest.MapFS{
				"package.json": {Data: []byte("{}")},
			},
			wantBase: ".",
		},
		{
			name: "malformed metadata",
			fsys: fstest.MapFS{
				"template.json": {Data: []byte(`{"name": `)},
			},
			wantErr: true,
		},
		{
			name: "invalid ignore pattern",
			fsys: fstest.MapFS{
				"template.json": {Data: []byte(`{"ignore": ["[unclosed"]}`)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := OpenFS(context.Background(), tt.fsys, ".")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenFS: %v", err)
			}
			defer tmpl.Close()

			if tmpl.Base != tt.wantBase {
				t.Errorf("Base = %q, want %q", tmpl.Base, tt.wantBase)
			}
			if tmpl.Meta.Name != tt.wantName {
				t.Errorf("Meta.Name = %q, want %q", tmpl.Meta.Name, tt.wantName)
			}
			if tmpl.Dir() != "" {
				t.Errorf("in-memory template has Dir %q", tmpl.Dir())
			}
		})
	}
}

func TestOpen_LocalDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "template.json"), []byte(`{"name": "local", "ignore": ["*.log"]}`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "debug.log"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.ts"), []byte("// {{project_name}}\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tmpl, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tmpl.Close()

	if _, ok := tmpl.Source().(*OSSource); !ok {
		t.Errorf("expected OSSource, got %T", tmpl.Source())
	}
	if tmpl.Dir() != dir {
		t.Errorf("Dir = %q, want %q", tmpl.Dir(), dir)
	}

	dest := t.TempDir()
	if _, err := tmpl.Materialize(dest, "demo", nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if exists(filepath.Join(dest, "debug.log")) {
		t.Error("ignored file copied")
	}
	if got := readFile(t, filepath.Join(dest, "index.ts")); got != "// demo\n" {
		t.Errorf("index.ts = %q", got)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{target: "https://github.com/thesandybridge/nullslate-template", want: "remote"},
		{target: "git@github.com:thesandybridge/nullslate-template.git", want: "remote"},
		{target: "github.com/thesandybridge/nullslate-template", want: "remote"},
		{target: t.TempDir(), want: "local"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			src, err := resolve(tt.target)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			var got string
			switch src.(type) {
			case *RemoteSource:
				got = "remote"
			case *OSSource:
				got = "local"
			}
			if got != tt.want {
				t.Errorf("resolve(%q) = %s, want %s", tt.target, got, tt.want)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		min     string
		wantErr error
		anyErr  bool
	}{
		{min: ""},
		{min: "0.1.0"},
		{min: "0.3"},
		{min: "0.4.0", wantErr: ErrIncompatible},
		{min: "1", wantErr: ErrIncompatible},
		{min: "one", anyErr: true},
	}

	current := version.Version{Major: 0, Minor: 3, Patch: 0}
	for _, tt := range tests {
		t.Run(tt.min, func(t *testing.T) {
			tmpl := &Template{Meta: Meta{MinVersion: tt.min}}
			err := tmpl.Compatible(current)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("expected error")
				}
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
