package evidence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(_ context.Context, key string, reader io.Reader, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) GetURL(key string) string { return "http://localhost/files/" + key }

type fakeRepo struct {
	uploads   map[uuid.UUID]*Upload
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{uploads: map[uuid.UUID]*Upload{}}
}

func (f *fakeRepo) Create(_ context.Context, u *Upload) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.uploads[u.ID] = u
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Upload, error) {
	u, ok := f.uploads[id]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByKey(_ context.Context, key string) (*Upload, error) {
	for _, u := range f.uploads {
		if u.Key == key {
			return u, nil
		}
	}
	return nil, ErrUploadNotFound
}

func (f *fakeRepo) ClaimNext(_ context.Context) (*Upload, bool, error) { return nil, false, nil }

func (f *fakeRepo) MarkProcessed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (f *fakeRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

var pngPayload = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestStoreAcceptsSniffedPNG(t *testing.T) {
	repo := newFakeRepo()
	st := newFakeStorage()
	svc := NewService(repo, st, nil)

	userID := uuid.New()
	u, err := svc.Store(context.Background(), userID, bytes.NewReader(pngPayload))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if u.MimeType != "image/png" {
		t.Errorf("mime = %q, want image/png", u.MimeType)
	}
	if !strings.HasSuffix(u.Key, ".png") {
		t.Errorf("key = %q, want .png extension", u.Key)
	}
	if u.SizeBytes != int64(len(pngPayload)) {
		t.Errorf("size = %d, want %d", u.SizeBytes, len(pngPayload))
	}
	if u.Status != StatusUploaded {
		t.Errorf("status = %q, want %q", u.Status, StatusUploaded)
	}
	if _, ok := st.objects[u.Key]; !ok {
		t.Errorf("object %q missing from storage", u.Key)
	}
	if _, err := repo.GetByID(context.Background(), u.ID); err != nil {
		t.Errorf("upload row missing: %v", err)
	}
}

func TestStoreRejectsNonImagePayload(t *testing.T) {
	repo := newFakeRepo()
	st := newFakeStorage()
	svc := NewService(repo, st, nil)

	// Declared content type is irrelevant; the payload itself is text
	_, err := svc.Store(context.Background(), uuid.New(), strings.NewReader("totally a jpeg, trust me"))
	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("err = %v, want ErrInvalidMimeType", err)
	}
	if len(st.objects) != 0 {
		t.Errorf("rejected upload reached storage")
	}
	if len(repo.uploads) != 0 {
		t.Errorf("rejected upload reached repository")
	}
}

func TestStoreRejectsEmptyUpload(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStorage(), nil)

	_, err := svc.Store(context.Background(), uuid.New(), bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestStoreCleansUpObjectOnRepoFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("connection reset")
	st := newFakeStorage()
	svc := NewService(repo, st, nil)

	_, err := svc.Store(context.Background(), uuid.New(), bytes.NewReader(pngPayload))
	if err == nil {
		t.Fatal("expected error when repository insert fails")
	}
	if len(st.objects) != 0 {
		t.Errorf("orphaned object left in storage after failed insert")
	}
	if len(st.deleted) != 1 {
		t.Errorf("deleted %d objects, want 1", len(st.deleted))
	}
}

func TestThumbKeyFor(t *testing.T) {
	cases := []struct{ key, want string }{
		{"evidence/abc.png", "evidence/abc_thumb.jpg"},
		{"evidence/abc.jpg", "evidence/abc_thumb.jpg"},
		{"evidence/noext", "evidence/noext_thumb.jpg"},
	}
	for _, c := range cases {
		if got := ThumbKeyFor(c.key); got != c.want {
			t.Errorf("ThumbKeyFor(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}
