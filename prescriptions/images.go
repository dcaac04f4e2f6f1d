package prescriptions

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"dukaan/utils"

	"github.com/disintegration/imaging"
)

const thumbWidth = 300

var ErrNotImage = errors.New("prescriptions: not a decodable image")

// SavedImage holds public URLs under /static/uploads.
type SavedImage struct {
	File      string
	Thumbnail string
	Width     int
	Height    int
}

// ImageSaver writes uploads below dir/prescriptions as JPEG, with a
// thumbnail in dir/prescriptions/thumb.
type ImageSaver struct {
	dir       string
	urlPrefix string
}

func NewImageSaver(uploadDir string) *ImageSaver {
	return &ImageSaver{dir: filepath.Join(uploadDir, "prescriptions"), urlPrefix: "/static/uploads/prescriptions"}
}

func (s *ImageSaver) Save(src io.Reader) (*SavedImage, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	name := utils.GetUUID() + ".jpg"
	thumbDir := filepath.Join(s.dir, "thumb")
	if err := utils.EnsureDir(thumbDir); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(s.dir, name)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	b := img.Bounds()
	return &SavedImage{
		File:      path.Join(s.urlPrefix, name),
		Thumbnail: path.Join(s.urlPrefix, "thumb", name),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}
