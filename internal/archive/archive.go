// internal/archive/archive.go
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mdpub/internal/store"
)

// ManifestPath is where jar tools look for the manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// Write bundles every file under dir into a jar/zip archive at path, with a
// manifest built from the [program] section first. The archive itself is
// skipped when it lives inside dir. It returns the number of entries written.
func Write(path, dir string, st *store.Store) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return 0, err
	}
	out, err := os.Create(absPath)
	if err != nil {
		return 0, fmt.Errorf("could not create archive %s: %w", path, err)
	}

	zw := zip.NewWriter(out)
	n, err := fill(zw, absPath, dir, st)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("could not write archive %s: %w", path, err)
	}
	return n, nil
}

func fill(zw *zip.Writer, self, dir string, st *store.Store) (int, error) {
	w, err := zw.Create(ManifestPath)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(w, Manifest(st)); err != nil {
		return 0, err
	}
	n := 1

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == self {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// Manifest renders a jar manifest for the program being documented.
func Manifest(st *store.Store) string {
	var sb strings.Builder
	sb.WriteString("Manifest-Version: 1.0\r\n")
	sb.WriteString("Created-By: mdpub\r\n")
	title := st.GetString("program", "name", "")
	if title == "" {
		title = st.GetString("program", "title", "")
	}
	if title != "" {
		fmt.Fprintf(&sb, "Implementation-Title: %s\r\n", title)
	}
	if v := st.GetString("program", "version", ""); v != "" {
		fmt.Fprintf(&sb, "Implementation-Version: %s\r\n", v)
	}
	sb.WriteString("\r\n")
	return sb.String()
}
