package portfolio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    error
}

func (b *memBlobs) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if b.objects == nil {
		b.objects = make(map[string][]byte)
	}
	b.objects[bucket+"/"+path] = data
	return nil
}

func (b *memBlobs) PublicURL(bucket, path string) (string, error) {
	return "https://cdn.example.com/media/" + bucket + "/" + path, nil
}

type serviceFixture struct {
	svc      *Service
	profiles *memTable[models.Profile]
	skills   *memTable[models.Skill]
	blobs    *memBlobs
	notifier *mockNotifier
}

func newServiceFixture() *serviceFixture {
	cache := NewReadCache(time.Minute)
	notifier := permissiveNotifier()
	blobs := &memBlobs{}

	profileSchema, skillSchema := ProfileSchema(), SkillSchema()
	profiles, skills := newMemTable(profileSchema), newMemTable(skillSchema)

	svc := NewService(blobs, notifier, []Controller{
		NewEntity(profileSchema, profiles, cache, notifier),
		NewEntity(skillSchema, skills, cache, notifier),
	}, WithSlotOptions(upload.WithClock(func() time.Time { return time.UnixMilli(1700000000000) })))

	return &serviceFixture{svc: svc, profiles: profiles, skills: skills, blobs: blobs, notifier: notifier}
}

func pngFile(size int) upload.File {
	data := make([]byte, size)
	copy(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	return upload.File{Name: "avatar.png", ContentType: "image/png", Size: int64(size), Reader: bytes.NewReader(data)}
}

func TestService_AvatarUploadWritesURLIntoProfileDraft(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	view, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, ModeNew, view.Mode)
	assert.Empty(t, view.Values["avatar_url"])

	status, err := f.svc.SelectFile(owner, KindProfile, "avatar_url", pngFile(3<<20))
	require.NoError(t, err)
	assert.Equal(t, upload.FileSelected, status.State)

	view, err = f.svc.CommitUpload(ctx, owner, KindProfile, "avatar_url")
	require.NoError(t, err)

	expected := "https://cdn.example.com/media/portfolio-images/" + owner.ID.String() + "/avatar-1700000000000.png"
	assert.Equal(t, expected, view.Values["avatar_url"])
	assert.Len(t, f.blobs.objects, 1)

	status, _ = f.svc.UploadStatus(owner, KindProfile, "avatar_url")
	assert.Equal(t, upload.Uploaded, status.State)

	for _, state := range []upload.State{upload.FileSelected, upload.Uploading, upload.Uploaded} {
		f.notifier.AssertCalled(t, "UploadChanged", owner.ID, KindProfile, upload.Status{Field: "avatar_url", State: state})
	}

	saved, err := f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, expected, saved.(models.Profile).AvatarURL)
}

func TestService_DocxToCVIsRejected(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	_, err = f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"cv_url": "https://cdn.example.com/old.pdf"})
	require.NoError(t, err)

	docx := upload.File{
		Name:        "cv.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Size:        2048,
		Reader:      bytes.NewReader(append([]byte("PK\x03\x04"), make([]byte, 2044)...)),
	}
	status, err := f.svc.SelectFile(owner, KindProfile, "cv_url", docx)

	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, upload.Idle, status.State)

	_, err = f.svc.CommitUpload(ctx, owner, KindProfile, "cv_url")
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.blobs.objects)

	view, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/old.pdf", view.Values["cv_url"])
}

func TestService_FailedUploadKeepsOriginalURL(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()
	f.blobs.fail = errors.New("503 service unavailable")

	_, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	_, err = f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"avatar_url": "https://cdn.example.com/me.png"})
	require.NoError(t, err)

	_, err = f.svc.SelectFile(owner, KindProfile, "avatar_url", pngFile(1024))
	require.NoError(t, err)
	_, err = f.svc.CommitUpload(ctx, owner, KindProfile, "avatar_url")
	assert.True(t, apperror.IsRemote(err))

	view, _ := f.svc.Form(ctx, owner, KindProfile)
	assert.Equal(t, "https://cdn.example.com/me.png", view.Values["avatar_url"])

	status, _ := f.svc.UploadStatus(owner, KindProfile, "avatar_url")
	assert.Equal(t, upload.Idle, status.State)
	f.notifier.AssertCalled(t, "Notify", owner.ID, mock.MatchedBy(func(n Notice) bool { return n.Level == LevelError }))
}

func TestService_RemoveUploadClearsFieldOnly(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.RemoveUpload(owner, KindProfile, "avatar_url")
	assert.True(t, apperror.IsValidation(err), "без формы очищать нечего")

	_, err = f.svc.SelectFile(owner, KindProfile, "avatar_url", pngFile(1024))
	require.NoError(t, err)
	_, err = f.svc.CommitUpload(ctx, owner, KindProfile, "avatar_url")
	require.NoError(t, err)

	view, err := f.svc.RemoveUpload(owner, KindProfile, "avatar_url")
	require.NoError(t, err)
	assert.Empty(t, view.Values["avatar_url"])
	assert.Len(t, f.blobs.objects, 1, "файл в хранилище не удаляется")
}

func TestService_ProfileFormLoadsSavedProfile(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"name": "Ignat Zorin", "titles": "Go Developer\nMentor"})
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)

	view, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, ModeEditing, view.Mode)
	assert.Equal(t, "Go Developer\nMentor", view.Values["titles"])

	profile, err := f.svc.Public(ctx, owner.ID, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, "Ignat Zorin", profile.(models.Profile).Name)
}

func TestService_UnknownAndPrivateSections(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()

	_, err := f.svc.List(context.Background(), owner, KindProjects)
	assert.ErrorIs(t, err, apperror.ErrUnknownEntity)

	_, err = f.svc.Public(context.Background(), owner.ID, KindContact)
	assert.ErrorIs(t, err, apperror.ErrUnknownEntity)

	_, err = f.svc.SelectFile(owner, KindSkills, "name", pngFile(16))
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Public(context.Background(), uuid.New(), KindProfile)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_EditAndDeleteSkill(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.SetFields(ctx, owner, KindSkills, map[string]string{"name": "Go", "category": "Backend", "proficiency": "90"})
	require.NoError(t, err)
	saved, err := f.svc.Save(ctx, owner, KindSkills)
	require.NoError(t, err)
	id := saved.(models.Skill).ID

	view, err := f.svc.StartEdit(ctx, owner, KindSkills, id)
	require.NoError(t, err)
	assert.Equal(t, ModeEditing, view.Mode)
	require.NotNil(t, view.OriginalID)
	assert.Equal(t, id, *view.OriginalID)
	assert.Equal(t, "90", view.Values["proficiency"])

	require.NoError(t, f.svc.Delete(ctx, owner, KindSkills, id))

	view, err = f.svc.Form(ctx, owner, KindSkills)
	require.NoError(t, err)
	assert.Equal(t, ModeIdle, view.Mode)

	list, err := f.svc.List(ctx, owner, KindSkills)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.StartEdit(ctx, owner, KindSkills, id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_EndSessionDropsForms(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.SetFields(ctx, owner, KindSkills, map[string]string{"name": "Go"})
	require.NoError(t, err)

	f.svc.EndSession(owner.ID)

	view, err := f.svc.Form(ctx, owner, KindSkills)
	require.NoError(t, err)
	assert.Equal(t, ModeIdle, view.Mode)
}

func TestService_ProfilePatchWithoutOpenFormKeepsSavedFields(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.SetFields(ctx, owner, KindProfile, map[string]string{
		"name":       "Ignat Zorin",
		"titles":     "Go Developer\nMentor",
		"avatar_url": "https://cdn.example.com/a.png",
		"phone":      "+7 900 000-00-00",
	})
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)

	// После сохранения форма снова пустая, поэтому патч идёт из Idle.
	view, err := f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"bio": "new bio"})
	require.NoError(t, err)
	assert.Equal(t, ModeEditing, view.Mode)

	saved, err := f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)

	profile := saved.(models.Profile)
	assert.Equal(t, "new bio", profile.Bio)
	assert.Equal(t, "Ignat Zorin", profile.Name)
	assert.Equal(t, []string{"Go Developer", "Mentor"}, []string(profile.Titles))
	assert.Equal(t, "https://cdn.example.com/a.png", profile.AvatarURL)
	assert.Equal(t, "+7 900 000-00-00", profile.Phone)
	assert.Len(t, f.profiles.rows, 1)
}

func TestService_ProfileRoundTripKeepsUntouchedFields(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	_, err = f.svc.SetFields(ctx, owner, KindProfile, map[string]string{
		"titles": "Go Developer\nMentor",
		"cv_url": "https://cdn.example.com/cv.pdf",
	})
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)

	view, err := f.svc.Form(ctx, owner, KindProfile)
	require.NoError(t, err)
	require.Equal(t, ModeEditing, view.Mode)
	assert.Equal(t, "Ignat", view.Values["name"])
	assert.Equal(t, "https://cdn.example.com/cv.pdf", view.Values["cv_url"])

	_, err = f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"address": "Moscow"})
	require.NoError(t, err)
	saved, err := f.svc.Save(ctx, owner, KindProfile)
	require.NoError(t, err)

	profile := saved.(models.Profile)
	assert.Equal(t, "Moscow", profile.Address)
	assert.Equal(t, "https://cdn.example.com/cv.pdf", profile.CVURL)
	assert.Equal(t, []string{"Go Developer", "Mentor"}, []string(profile.Titles))

	// Отмена правок не меняет сохранённую строку.
	_, err = f.svc.SetFields(ctx, owner, KindProfile, map[string]string{"address": "Kazan"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(owner, KindProfile)
	require.NoError(t, err)

	stored, err := f.svc.Public(ctx, owner.ID, KindProfile)
	require.NoError(t, err)
	assert.Equal(t, "Moscow", stored.(models.Profile).Address)
}

func TestService_CommitUploadSkipsBlobWhenProfileUnreadable(t *testing.T) {
	f := newServiceFixture()
	owner := testOwner()
	ctx := context.Background()

	_, err := f.svc.SelectFile(owner, KindProfile, "avatar_url", pngFile(1024))
	require.NoError(t, err)

	f.profiles.FailOn("query", errors.New("connection reset"))
	_, err = f.svc.CommitUpload(ctx, owner, KindProfile, "avatar_url")
	assert.True(t, apperror.IsRemote(err))
	assert.Empty(t, f.blobs.objects)

	status, err := f.svc.UploadStatus(owner, KindProfile, "avatar_url")
	require.NoError(t, err)
	assert.Equal(t, upload.FileSelected, status.State, "файл остаётся выбранным для повтора")
}
