package upload

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
)

type mockBlobs struct {
	mock.Mock
}

func (m *mockBlobs) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, bucket, path, data, contentType)
	return args.Error(0)
}

func (m *mockBlobs) PublicURL(bucket, path string) (string, error) {
	args := m.Called(bucket, path)
	return args.String(0), args.Error(1)
}

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func pngOfSize(size int) []byte {
	data := make([]byte, size)
	copy(data, pngMagic)
	return data
}

func realPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func recordStates(states *[]State) Option {
	return WithObserver(func(_ Spec, _, to State) {
		*states = append(*states, to)
	})
}

func fixedClock() Option {
	return WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
}

func TestSlot_AvatarUploadTransitions(t *testing.T) {
	owner := uuid.MustParse("0b6f3c9e-2d7a-4a57-9f5e-4b1d6c2a7e10")
	data := pngOfSize(3 << 20)
	expectedPath := owner.String() + "/avatar-1700000000000.png"

	blobs := new(mockBlobs)
	blobs.On("Upload", mock.Anything, "portfolio-images", expectedPath, data, "image/png").Return(nil)
	blobs.On("PublicURL", "portfolio-images", expectedPath).Return("http://cdn/media/portfolio-images/"+expectedPath, nil)

	var states []State
	slot := NewSlot(Avatar, recordStates(&states), fixedClock())

	require.NoError(t, slot.Select(File{Name: "me.png", ContentType: "image/png", Size: int64(len(data)), Reader: bytes.NewReader(data)}))
	assert.Equal(t, FileSelected, slot.State())
	_, ok := slot.Preview()
	assert.True(t, ok)

	url, err := slot.Upload(context.Background(), blobs, owner)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/media/portfolio-images/"+expectedPath, url)
	assert.Equal(t, []State{FileSelected, Uploading, Uploaded}, states)

	_, ok = slot.Preview()
	assert.False(t, ok, "превью очищается после загрузки")
	assert.Equal(t, url, slot.Status().URL)
	blobs.AssertExpectations(t)
}

func TestSlot_CVRejectsDocx(t *testing.T) {
	blobs := new(mockBlobs)
	var states []State
	slot := NewSlot(CV, recordStates(&states))

	docx := append([]byte("PK\x03\x04"), make([]byte, 128)...)
	err := slot.Select(File{
		Name:        "cv.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Size:        int64(len(docx)),
		Reader:      bytes.NewReader(docx),
	})

	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, Idle, slot.State())
	assert.Empty(t, states)

	_, err = slot.Upload(context.Background(), blobs, uuid.New())
	assert.True(t, apperror.IsValidation(err))
	blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSlot_RejectsSpoofedContentType(t *testing.T) {
	slot := NewSlot(CV)
	data := pngOfSize(1024)

	err := slot.Select(File{Name: "cv.pdf", ContentType: "application/pdf", Size: int64(len(data)), Reader: bytes.NewReader(data)})

	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, Idle, slot.State())
}

func TestSlot_AcceptsPDF(t *testing.T) {
	slot := NewSlot(CV)
	data := append([]byte("%PDF-1.7\n"), make([]byte, 64)...)

	require.NoError(t, slot.Select(File{Name: "cv.pdf", ContentType: "application/pdf", Size: -1, Reader: bytes.NewReader(data)}))
	assert.Equal(t, FileSelected, slot.State())

	_, ok := slot.Preview()
	assert.False(t, ok)
}

func TestSlot_SizeCeiling(t *testing.T) {
	slot := NewSlot(CompanyLogo)
	data := pngOfSize(2<<20 + 1)

	err := slot.Select(File{Name: "logo.png", ContentType: "image/png", Size: int64(len(data)), Reader: bytes.NewReader(data)})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, Idle, slot.State())

	// заявленный размер неизвестен, лимит проверяется по прочитанным байтам
	err = slot.Select(File{Name: "logo.png", ContentType: "image/png", Size: -1, Reader: bytes.NewReader(data)})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, Idle, slot.State())
}

func TestSlot_FailedUploadReturnsToIdle(t *testing.T) {
	data := pngOfSize(1024)
	blobs := new(mockBlobs)
	blobs.On("Upload", mock.Anything, "portfolio-images", mock.Anything, data, "image/png").Return(errors.New("bucket unavailable"))

	var states []State
	slot := NewSlot(ProjectImage, recordStates(&states))
	require.NoError(t, slot.Select(File{Name: "shot.png", ContentType: "image/png", Size: 1024, Reader: bytes.NewReader(data)}))

	url, err := slot.Upload(context.Background(), blobs, uuid.New())

	assert.Empty(t, url)
	assert.True(t, apperror.IsRemote(err))
	assert.Equal(t, []State{FileSelected, Uploading, Failed, Idle}, states)
	assert.Equal(t, Idle, slot.State())
	blobs.AssertNotCalled(t, "PublicURL", mock.Anything, mock.Anything)
}

func TestSlot_PreviewIsDownscaledJPEG(t *testing.T) {
	data := realPNG(t, 1200, 600)
	slot := NewSlot(ProjectImage)

	require.NoError(t, slot.Select(File{Name: "wide.png", ContentType: "image/png", Size: int64(len(data)), Reader: bytes.NewReader(data)}))

	preview, ok := slot.Preview()
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", preview.ContentType)

	img, _, err := image.Decode(bytes.NewReader(preview.Data))
	require.NoError(t, err)
	assert.Equal(t, previewWidth, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}

// pngHeader собирает PNG, который только заявляет размеры w×h: растра в нём нет.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // бит на канал
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.Write(pngMagic)
	writeChunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	}
	writeChunk("IHDR", ihdr)
	writeChunk("IDAT", make([]byte, 9000))
	writeChunk("IEND", nil)
	return buf.Bytes()
}

func TestSlot_HugeDeclaredDimensionsSkipPreview(t *testing.T) {
	data := pngHeader(12000, 12000)
	slot := NewSlot(Avatar)

	require.NoError(t, slot.Select(File{Name: "bomb.png", ContentType: "image/png", Size: int64(len(data)), Reader: bytes.NewReader(data)}))
	assert.Equal(t, FileSelected, slot.State())

	_, ok := slot.Preview()
	assert.False(t, ok, "растр такого размера не декодируется")

	_, err := makePreview(data, "image/png")
	assert.ErrorIs(t, err, errTooManyPixels)
}

func TestSpec_Allows(t *testing.T) {
	assert.True(t, Avatar.Allows("image/webp"))
	assert.True(t, Avatar.Allows("IMAGE/PNG; charset=binary"))
	assert.False(t, Avatar.Allows("application/pdf"))
	assert.False(t, Avatar.Allows(""))
	assert.True(t, CV.Allows("application/pdf"))
	assert.False(t, CV.Allows("image/png"))
}
