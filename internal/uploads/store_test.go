package uploads

import (
	"bytes"
	"go.uber.org/zap"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

// fileHeader round-trips one file through a multipart body so it can be opened.
func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func TestNew_ProvisionsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := New(dir, zap.NewNop()); err != nil {
		t.Fatalf("New: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if _, err := New("", nil); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestName(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	s.suffix = func() string { return "abcd1234" }

	if got := s.Name("proof.PNG"); got != "1700000000123-abcd1234.PNG" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := s.Name("noext"); got != "1700000000123-abcd1234" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestSave_UniqueNames(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	fh := fileHeader(t, "image", "tea.jpg", []byte("jpeg-bytes"))

	a, err := s.Save(fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := s.Save(fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct names, got %q twice", a)
	}
	if !regexp.MustCompile(`^\d+-[0-9a-f]{8}\.jpg$`).MatchString(a) {
		t.Fatalf("name %q does not match pattern", a)
	}
	got, err := os.ReadFile(filepath.Join(s.Dir, a))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "jpeg-bytes" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestRemove_BestEffort(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	name, err := s.Save(fileHeader(t, "image", "x.png", []byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	s.Remove(name)
	if _, err := os.Stat(filepath.Join(s.Dir, name)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	// missing file and empty name must not panic
	s.Remove(name)
	s.Remove("")
}

func TestHandler_ServesFiles(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	name, err := s.Save(fileHeader(t, "image", "menu.txt", []byte("hello")))
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RelativeURL(name), nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_NoDirectoryListing(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(fileHeader(t, "paymentProof", "proof.png", []byte("x"))); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{URLPrefix, URLPrefix + "nested/", URLPrefix + "nested"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s: expected 404, got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func TestPublicURL(t *testing.T) {
	if PublicURL("http://localhost:5000", "") != nil {
		t.Fatal("expected nil for empty name")
	}
	u := PublicURL("http://localhost:5000", "1-a.png")
	if u == nil || *u != "http://localhost:5000/uploads/1-a.png" {
		t.Fatalf("unexpected url %v", u)
	}
}
