package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	previewWidth   = 320
	previewQuality = 75
	// maxPreviewPixels ограничивает декодирование: маленький файл может
	// заявить огромные размеры и потребовать гигабайты под растр.
	maxPreviewPixels = 40_000_000
)

var errTooManyPixels = errors.New("upload: изображение слишком большое для превью")

// Preview: локальное превью выбранного файла.
type Preview struct {
	Data        []byte
	ContentType string
}

// makePreview уменьшает изображение до previewWidth и кодирует в JPEG.
// Если изображение не декодируется, превью состоит из исходных байтов.
// Для изображений больше maxPreviewPixels превью не строится.
func makePreview(data []byte, contentType string) (*Preview, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &Preview{Data: data, ContentType: contentType}, fmt.Errorf("upload: decode preview config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPreviewPixels {
		return nil, fmt.Errorf("%w: %dx%d", errTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &Preview{Data: data, ContentType: contentType}, fmt.Errorf("upload: decode preview: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > previewWidth {
		newH := h * previewWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, previewWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewQuality}); err != nil {
		return &Preview{Data: data, ContentType: contentType}, fmt.Errorf("upload: encode preview: %w", err)
	}

	return &Preview{Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}
