package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)

func TestName(t *testing.T) {
	u := New(t.TempDir()).WithClock(func() time.Time { return fixed })

	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "20240309070502_photo.png"},
		{"../../etc/passwd", "20240309070502_passwd"},
		{`C:\Users\me\report.pdf`, "20240309070502_report.pdf"},
		{"..", "20240309070502_upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, u.Name(tt.in), tt.in)
	}
}

func newUploadContext(t *testing.T, filename string, content []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/addpost", &body)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())
	return c
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	u := New(dir).WithClock(func() time.Time { return fixed })
	content := []byte("hello\x00world")

	c := newUploadContext(t, "notes.txt", content)
	fh, err := c.FormFile("file")
	require.NoError(t, err)

	name, err := u.Save(c, fh)
	require.NoError(t, err)
	assert.Equal(t, "20240309070502_notes.txt", name)

	got, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, u.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
}

func TestSave_UnwritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o644))
	u := New(dir)

	c := newUploadContext(t, "notes.txt", []byte("x"))
	fh, err := c.FormFile("file")
	require.NoError(t, err)

	_, err = u.Save(c, fh)
	assert.Error(t, err)
}
