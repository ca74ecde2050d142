// Package uploads keeps the images attached to posts on the local disk
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Disk stores uploaded files under a single directory
	Disk struct {
		dir string
		now func() time.Time
	}
)

// NewDisk returns a Disk rooted at dir, creating it when needed
func NewDisk(dir string) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve upload dir %v, cause %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("unable to create upload dir %v, cause %w", abs, err)
	}
	return &Disk{dir: abs, now: time.Now}, nil
}

func (d *Disk) Dir() string {
	return d.dir
}

// Save writes content under a name derived from the client provided
// filename and returns the stored name. Existing files are never replaced.
func (d *Disk) Save(filename string, content io.Reader) (string, error) {
	base := cleanName(filename)
	name := fmt.Sprintf("%v-%v", d.now().UnixMilli(), base)
	fd, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		name = fmt.Sprintf("%v-%v-%v", d.now().UnixMilli(), uuid.NewString()[:8], base)
		fd, err = os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("unable to create upload %v, cause %w", name, err)
	}
	_, err = io.Copy(fd, content)
	if cerr := fd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(d.dir, name))
		return "", fmt.Errorf("unable to write upload %v, cause %w", name, err)
	}
	return name, nil
}

// cleanName keeps only the last path element of filename using a
// conservative set of characters
func cleanName(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	base := filepath.Base(filename)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "upload"
	}
	return base
}
