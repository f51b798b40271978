// Package atomicwrite escribe archivos de forma atómica (tmp + rename), para
// que un lector nunca vea una clave a medio escribir.
package atomicwrite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile escribe data en path: tmp en el mismo directorio, fsync, chmod y
// rename. Si el rename falla se reintenta tras borrar el destino.
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicwrite: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("atomicwrite: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("atomicwrite: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("atomicwrite: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomicwrite: close: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("atomicwrite: chmod: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("atomicwrite: rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
