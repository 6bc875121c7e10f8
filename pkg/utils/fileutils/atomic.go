package fileutils

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWrite replaces path with the output of gen. Readers never observe a
// partially written file.
func AtomicWrite(path string, perm fs.FileMode, gen func(w io.Writer) error) error {
	tmp, err := writeTemp(path, perm, gen)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	return commit(tmp, path)
}

// AtomicEdit is AtomicWrite that leaves path untouched when gen produces the
// content it already holds.
func AtomicEdit(path string, perm fs.FileMode, gen func(w io.Writer) error) error {
	tmp, err := writeTemp(path, perm, gen)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if eq, err := sameContent(tmp, path); err != nil {
		return err
	} else if eq {
		return nil
	}

	return commit(tmp, path)
}

func writeTemp(path string, perm fs.FileMode, gen func(w io.Writer) error) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", err
	}

	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}

	if err := gen(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}

	return tmp.Name(), nil
}

func commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	if df, err := os.Open(filepath.Dir(path)); err == nil {
		_ = df.Sync()
		_ = df.Close()
	}
	return nil
}

// sameContent reports whether a and b hold identical bytes. A missing b is
// never equal.
func sameContent(a, b string) (bool, error) {
	bInfo, err := os.Stat(b)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	aInfo, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	if aInfo.Size() != bInfo.Size() {
		return false, nil
	}

	aData, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	bData, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}

	return bytes.Equal(aData, bData), nil
}
