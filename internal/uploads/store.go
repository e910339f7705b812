package uploads

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/uploads/"

// Store writes uploaded files into a single flat directory.
// It knows nothing about which record owns a file.
type Store struct {
	Dir string
	Log *zap.Logger

	now    func() time.Time
	suffix func() string
}

// New provisions dir (creating it if needed) and returns a Store rooted there.
func New(dir string, log *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("uploads: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: provision %s: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		Dir:    dir,
		Log:    log,
		now:    time.Now,
		suffix: func() string { return uuid.NewString()[:8] },
	}, nil
}

// Name builds "<unix-millis>-<random>.<ext>" keeping the client's extension.
func (s *Store) Name(original string) string {
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), s.suffix(), filepath.Ext(original))
}

// Save copies fh into the directory under a fresh name and returns that name.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := s.Name(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Failures are logged and never returned.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.Remove(path); err != nil {
		s.Log.Warn("upload cleanup failed", zap.String("file", name), zap.Error(err))
		return
	}
	s.Log.Debug("upload removed", zap.String("file", name))
}

// Handler serves stored files; mount it under URLPrefix. Directories are
// never listed, only exact file names resolve.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(filesOnly{http.Dir(s.Dir)}))
}

// filesOnly hides directories so the file server answers 404 instead of an index.
type filesOnly struct{ root http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if st.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// PublicURL expands a stored filename to an absolute URL on origin
// (e.g. "http://localhost:5000"). Empty names yield nil so they encode as JSON null.
func PublicURL(origin, name string) *string {
	if name == "" {
		return nil
	}
	u := origin + URLPrefix + name
	return &u
}

// RelativeURL is the origin-less form, "/uploads/<name>".
func RelativeURL(name string) string {
	return URLPrefix + name
}
