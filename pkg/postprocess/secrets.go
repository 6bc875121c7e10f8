package postprocess

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nullslate/nullslate/pkg/utils/fileutils"
)

// SecretBytes is the amount of randomness in a generated secret.
const SecretBytes = 32

// Secrets describes a generated environment file: a comment header, one key
// holding a fresh secret and any number of empty placeholder keys.
type Secrets struct {
	File         string
	Header       string
	Key          string
	Placeholders []string
}

// GenerateSecret returns SecretBytes of cryptographically secure randomness
// as lowercase hex.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// WriteSecrets writes s below root, replacing any file already there, and
// returns the path written.
func WriteSecrets(root string, s Secrets) (string, error) {
	secret, err := GenerateSecret()
	if err != nil {
		return "", err
	}

	path := filepath.Join(root, filepath.FromSlash(s.File))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	err = fileutils.AtomicWrite(path, 0o600, func(w io.Writer) error {
		return s.render(w, secret)
	})
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", s.File, err)
	}

	return path, nil
}

func (s Secrets) render(w io.Writer, secret string) error {
	if s.Header != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", s.Header); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s=%s\n", s.Key, secret); err != nil {
		return err
	}
	for _, key := range s.Placeholders {
		if _, err := fmt.Fprintf(w, "%s=\n", key); err != nil {
			return err
		}
	}
	return nil
}
