package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageDecodeError reports an image that could not be decoded.
type ImageDecodeError struct {
	ImageID string
	Err     error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.ImageID, e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// Decode parses jpeg, png, gif, webp or bmp bytes.
func Decode(id string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageDecodeError{ImageID: id, Err: fmt.Errorf("no image data")}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{ImageID: id, Err: err}
	}
	return img, nil
}
