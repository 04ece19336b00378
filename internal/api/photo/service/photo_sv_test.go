package photoService

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"FastGrapher/internal/api/photo"
	photoRepository "FastGrapher/internal/api/photo/repository"
	"FastGrapher/internal/classifier"
	"FastGrapher/internal/entity"
	"FastGrapher/pkg/storage"
	"FastGrapher/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakePhotos struct {
	mu        sync.Mutex
	byID      map[string]entity.Photo
	createErr error
}

func (f *fakePhotos) CreatePhoto(_ context.Context, p entity.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePhotos) GetPhotoByID(_ context.Context, id string) (entity.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return entity.Photo{}, photo.ErrPhotoNotFound
	}
	return p, nil
}

func (f *fakePhotos) ListPhotos(_ context.Context, q photo.ListQuery) ([]entity.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Photo
	for _, p := range f.byID {
		if q.UserID != "" && p.UserID != q.UserID {
			continue
		}
		if q.ProjectID != "" && p.ProjectID != q.ProjectID {
			continue
		}
		if q.Filter == entity.PhotoFilterClosedEyes && !p.HasClosedEyes {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePhotos) DeletePhoto(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return photo.ErrPhotoNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePhotos) deleteWhere(match func(entity.Photo) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, p := range f.byID {
		if match(p) {
			delete(f.byID, id)
			n++
		}
	}
	return n
}

func (f *fakePhotos) DeletePhotosByProject(_ context.Context, projectID string) (int64, error) {
	return f.deleteWhere(func(p entity.Photo) bool { return p.ProjectID == projectID }), nil
}

func (f *fakePhotos) DeletePhotosByUser(_ context.Context, userID string) (int64, error) {
	return f.deleteWhere(func(p entity.Photo) bool { return p.UserID == userID }), nil
}

type fakeRepo struct {
	photos *fakePhotos
}

func (r *fakeRepo) NewClient(bool) (photoRepository.Client, error) {
	return photoRepository.Client{
		Photos:   r.photos,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type memStorage struct {
	mu     sync.Mutex
	files  map[string][]byte
	putErr map[string]error
}

func (m *memStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.putErr[key]; err != nil {
		return err
	}
	m.files[key] = data
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memStorage) Locate(_ context.Context, key string) (storage.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return storage.Location{}, storage.ErrNotFound
	}
	return storage.Location{Path: "/data/" + key}, nil
}

func (m *memStorage) Driver() string { return storage.DriverLocal }

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fixedClassifier struct {
	result classifier.ClassificationResult
	calls  int
}

func (c *fixedClassifier) ClassifyBytes(context.Context, []byte) classifier.ClassificationResult {
	c.calls++
	return c.result
}

type fixture struct {
	svc    IPhotoService
	photos *fakePhotos
	store  *memStorage
	cl     *fixedClassifier
}

func newFixture(t *testing.T, result classifier.ClassificationResult) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		photos: &fakePhotos{byID: map[string]entity.Photo{}},
		store:  &memStorage{files: map[string][]byte{}, putErr: map[string]error{}},
		cl:     &fixedClassifier{result: result},
	}
	f.svc = NewPhotoService(logger, &fakeRepo{photos: f.photos}, f.store, f.cl, utils.New())
	return f
}

func upload(t *testing.T, f *fixture) photo.UploadResponse {
	t.Helper()
	res, err := f.svc.Upload(context.Background(), photo.UploadInput{
		UserID:       "u1",
		ProjectID:    "pr1",
		ProjectName:  "Ana & Bo Wedding",
		OriginalName: "IMG_001.JPG",
		MimeType:     "image/jpeg",
		Data:         []byte("jpeg-bytes"),
	})
	require.NoError(t, err)
	return res
}

func TestUploadPlainPhoto(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{BlurScore: 150, IsCentered: true, CenterDistance: 0.08})

	res := upload(t, f)
	require.True(t, res.Success)
	require.Equal(t, photo.MessageUploaded, res.Message)
	require.Equal(t, "IMG_001.JPG", res.Photo.OriginalName)
	require.EqualValues(t, len("jpeg-bytes"), res.Photo.Size)
	require.Regexp(t, `^ana-bo-wedding-[0-9a-z]{26}\.jpg$`, res.Photo.Filename)

	stored := f.photos.byID[res.Photo.ID]
	require.Equal(t, res.Photo.Filename, stored.Path)
	require.Empty(t, stored.NotLookingPath)
	require.Empty(t, stored.GroupsPath)
	require.InDelta(t, 150, stored.BlurScore, 1e-9)
	require.True(t, stored.IsCentered)
	require.InDelta(t, 0.08, stored.CenterDistance, 1e-9)
	require.Equal(t, []string{res.Photo.Filename}, f.store.keys())
}

func TestUploadFilesTaggedCopies(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{HasClosedEyes: true, NotLookingAtCamera: true, IsGroupPhoto: true})

	res := upload(t, f)
	name := res.Photo.Filename
	stored := f.photos.byID[res.Photo.ID]

	require.Equal(t, "closed-eyes/"+name, stored.Path)
	require.Equal(t, "not-looking/"+name, stored.NotLookingPath)
	require.Equal(t, "groups/"+name, stored.GroupsPath)
	require.Equal(t, []string{"closed-eyes/" + name, "groups/" + name, "not-looking/" + name}, f.store.keys())
	require.True(t, res.Classification.HasClosedEyes)
}

func TestUploadRollsBackFilesOnDatabaseError(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{IsGroupPhoto: true})
	f.photos.createErr = errors.New("db down")

	_, err := f.svc.Upload(context.Background(), photo.UploadInput{
		UserID: "u1", ProjectID: "pr1", OriginalName: "a.png", MimeType: "image/png", Data: []byte("png"),
	})
	require.Error(t, err)
	require.Empty(t, f.store.keys())
	require.Empty(t, f.photos.byID)
}

func TestUploadEmpty(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{})

	_, err := f.svc.Upload(context.Background(), photo.UploadInput{UserID: "u1", ProjectID: "pr1"})
	require.ErrorIs(t, err, photo.ErrNoFile)
	require.Zero(t, f.cl.calls)
}

func TestListByProject(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{})
	f.photos.byID["p1"] = entity.Photo{ID: "p1", UserID: "u1", ProjectID: "pr1", Path: "a.jpg"}
	f.photos.byID["p2"] = entity.Photo{ID: "p2", UserID: "u1", ProjectID: "pr1", Path: "closed-eyes/b.jpg", HasClosedEyes: true}
	f.photos.byID["p3"] = entity.Photo{ID: "p3", UserID: "u2", ProjectID: "pr1", Path: "c.jpg"}

	all, err := f.svc.ListByProject(context.Background(), "u1", "pr1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	closed, err := f.svc.ListByProject(context.Background(), "u1", "pr1", "closed-eyes")
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, photo.FileRoute+"closed-eyes/b.jpg", closed[0].URL)

	_, err = f.svc.ListByProject(context.Background(), "u1", "pr1", "sideways")
	require.ErrorIs(t, err, photo.ErrInvalidFilter)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{NotLookingAtCamera: true})
	res := upload(t, f)

	require.ErrorIs(t, f.svc.Delete(context.Background(), "u2", res.Photo.ID), photo.ErrPhotoNotOwned)
	require.Len(t, f.store.keys(), 2)

	require.NoError(t, f.svc.Delete(context.Background(), "u1", res.Photo.ID))
	require.Empty(t, f.store.keys())
	require.ErrorIs(t, f.svc.Delete(context.Background(), "u1", res.Photo.ID), photo.ErrPhotoNotFound)
}

func TestRemoveFromProject(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{})
	res := upload(t, f)

	err := f.svc.RemoveFromProject(context.Background(), "u1", "other", res.Photo.ID)
	require.ErrorIs(t, err, photo.ErrPhotoNotInProject)

	require.NoError(t, f.svc.RemoveFromProject(context.Background(), "u1", "pr1", res.Photo.ID))
	require.Empty(t, f.photos.byID)
}

func TestRemoveByProjectAndUser(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{IsGroupPhoto: true})
	upload(t, f)
	upload(t, f)
	require.Len(t, f.store.keys(), 4)

	require.NoError(t, f.svc.RemoveByProject(context.Background(), "pr1"))
	require.Empty(t, f.store.keys())
	require.Empty(t, f.photos.byID)

	upload(t, f)
	require.NoError(t, f.svc.RemoveByUser(context.Background(), "u1"))
	require.Empty(t, f.store.keys())
	require.Empty(t, f.photos.byID)
}

func TestLocate(t *testing.T) {
	f := newFixture(t, classifier.ClassificationResult{})
	res := upload(t, f)

	loc, err := f.svc.Locate(context.Background(), res.Photo.Filename)
	require.NoError(t, err)
	require.Equal(t, "/data/"+res.Photo.Filename, loc.Path)

	_, err = f.svc.Locate(context.Background(), "missing.jpg")
	require.ErrorIs(t, err, photo.ErrFileNotFound)
}
