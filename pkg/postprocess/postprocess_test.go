package postprocess

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var sessionWrapper = Wrapper{
	File:   "src/routes/__root.tsx",
	Import: `import { SessionProvider } from "@/components/session-provider"`,
	Open:   "        <SessionProvider>",
	Close:  "        </SessionProvider>",
}

const rootLayout = `import { Outlet } from "@tanstack/react-router"
import { SessionProvider } from "@/components/session-provider"
import { ThemeProvider } from "@thesandybridge/themes"

export function RootComponent() {
  return (
    <html>
      <body>
        <SessionProvider>
          <ThemeProvider>
            <Outlet />
          </ThemeProvider>
        </SessionProvider>
      </body>
    </html>
  )
}
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func TestStripWrapper(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, sessionWrapper.File, rootLayout)

	changed, err := StripWrapper(root, sessionWrapper)
	if err != nil {
		t.Fatalf("StripWrapper: %v", err)
	}
	if !changed {
		t.Fatal("expected file to change")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	got := string(data)

	if strings.Contains(got, "SessionProvider") {
		t.Errorf("SessionProvider still present:\n%s", got)
	}

	inner := "          <ThemeProvider>\n            <Outlet />\n          </ThemeProvider>\n"
	if !strings.Contains(got, inner) {
		t.Errorf("enclosed lines were not preserved:\n%s", got)
	}
	if want := len(strings.Split(rootLayout, "\n")) - 3; len(strings.Split(got, "\n")) != want {
		t.Errorf("expected exactly 3 lines removed, got:\n%s", got)
	}
}

func TestStripWrapper_NoMarkers(t *testing.T) {
	root := t.TempDir()
	content := "export function RootComponent() {\n  return <Outlet />\n}\n"
	path := writeFile(t, root, sessionWrapper.File, content)

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	changed, err := StripWrapper(root, sessionWrapper)
	if err != nil {
		t.Fatalf("StripWrapper: %v", err)
	}
	if changed {
		t.Error("file without markers should not change")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	if string(data) != content {
		t.Errorf("file changed:\n%s", data)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !os.SameFile(before, after) {
		t.Error("file was replaced although nothing matched")
	}
}

func TestStripWrapper_MissingFile(t *testing.T) {
	changed, err := StripWrapper(t.TempDir(), sessionWrapper)
	if err != nil {
		t.Fatalf("missing file should be a no-op, got %v", err)
	}
	if changed {
		t.Error("missing file reported as changed")
	}
}

func TestStripWrapper_ReformattedMarkersAreKept(t *testing.T) {
	root := t.TempDir()
	content := "    <SessionProvider>\n      <Outlet />\n    </SessionProvider>\n"
	writeFile(t, root, sessionWrapper.File, content)

	changed, err := StripWrapper(root, sessionWrapper)
	if err != nil {
		t.Fatalf("StripWrapper: %v", err)
	}
	if changed {
		t.Error("markers with different indentation must not match")
	}
}

func TestStripLines_CRLF(t *testing.T) {
	got, removed := stripLines("a\r\nmarker\r\nb\r\n", "marker")
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if got != "a\r\nb\r\n" {
		t.Errorf("got %q", got)
	}
}

var hexSecret = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateSecret(t *testing.T) {
	seen := make(map[string]bool)
	for range 8 {
		secret, err := GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret: %v", err)
		}
		if !hexSecret.MatchString(secret) {
			t.Fatalf("secret %q is not 64 lowercase hex characters", secret)
		}
		if seen[secret] {
			t.Fatalf("secret %q generated twice", secret)
		}
		seen[secret] = true
	}
}

func TestWriteSecrets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "STALE=1\n")

	s := Secrets{
		File:         ".env",
		Header:       "Auth (GitHub OAuth)",
		Key:          "AUTH_SECRET",
		Placeholders: []string{"AUTH_GITHUB_ID", "AUTH_GITHUB_SECRET"},
	}

	path, err := WriteSecrets(root, s)
	if err != nil {
		t.Fatalf("WriteSecrets: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read secrets: %v", err)
	}

	pattern := regexp.MustCompile(`^# Auth \(GitHub OAuth\)\nAUTH_SECRET=[0-9a-f]{64}\nAUTH_GITHUB_ID=\nAUTH_GITHUB_SECRET=\n$`)
	if !pattern.Match(data) {
		t.Errorf("unexpected secrets file:\n%s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}
}
