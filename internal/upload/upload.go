// Package upload stores post attachments in a flat directory.
package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const timestampLayout = "20060102150405"

// Uploader saves files under Dir as <YYYYMMDDHHMMSS>_<original name>.
type Uploader struct {
	dir string
	now func() time.Time
}

func New(dir string) *Uploader {
	return &Uploader{dir: dir, now: time.Now}
}

// WithClock overrides the time source used for generated names.
func (u *Uploader) WithClock(now func() time.Time) *Uploader {
	u.now = now
	return u
}

// Dir is the directory files are written to.
func (u *Uploader) Dir() string {
	return u.dir
}

// Name builds the stored file name for a client supplied filename.
// Directory components are dropped.
func (u *Uploader) Name(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return u.now().Format(timestampLayout) + "_" + base
}

// Save writes the uploaded file and returns its generated name.
func (u *Uploader) Save(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	name := u.Name(fh.Filename)
	if err := c.SaveUploadedFile(fh, filepath.Join(u.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload %q: %w", name, err)
	}
	return name, nil
}

// Remove deletes a previously saved file.
func (u *Uploader) Remove(name string) error {
	return os.Remove(filepath.Join(u.dir, filepath.Base(name)))
}
