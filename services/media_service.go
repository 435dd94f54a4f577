package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/utils"
)

// MaxImageBytes is the largest image accepted before compression.
const MaxImageBytes = 5 * 1024 * 1024

// Upload is an image file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// ValidateImage checks the file extension and size.
func ValidateImage(filename string, size int64) error {
	if size <= 0 || size > MaxImageBytes {
		return apperror.NewValidation("Images must be 5MB or smaller")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return nil
	}
	return apperror.NewValidation("Images must be JPG, PNG or WebP")
}

// ImageUploader stores an encoded image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, folder, publicID string) (string, error)
}

// CloudinaryUploader uploads to Cloudinary.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader returns a nil uploader when url is empty, which
// disables uploads.
func NewCloudinaryUploader(url string) (ImageUploader, error) {
	if url == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, folder, publicID string) (string, error) {
	ow := true
	uf := true
	up, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		Overwrite:      &ow,
		UniqueFilename: &uf,
		ResourceType:   "image",
	})
	if err != nil {
		return "", err
	}
	if up.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", up.Error.Message)
	}
	return up.SecureURL, nil
}

// MediaService compresses images and uploads them.
type MediaService struct {
	uploader      ImageUploader
	profileTarget int
	jobTarget     int
	log           logger.Logger
}

func NewMediaService(up ImageUploader, profileTarget, jobTarget int, log logger.Logger) *MediaService {
	return &MediaService{uploader: up, profileTarget: profileTarget, jobTarget: jobTarget, log: log}
}

func (m *MediaService) UploadProfilePhoto(ctx context.Context, accountID string, file Upload) (string, error) {
	return m.upload(ctx, file, "profiles/"+accountID+"/photos", m.profileTarget)
}

func (m *MediaService) UploadIDPhoto(ctx context.Context, accountID string, file Upload) (string, error) {
	return m.upload(ctx, file, "profiles/"+accountID+"/id", m.jobTarget)
}

// UploadJobPhotos uploads files concurrently. URLs come back in the order of
// files; any failure fails the whole batch.
func (m *MediaService) UploadJobPhotos(ctx context.Context, jobID string, files []Upload) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := m.upload(gctx, f, "jobs/"+jobID+"/info", m.jobTarget)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (m *MediaService) upload(ctx context.Context, file Upload, folder string, target int) (string, error) {
	if m.uploader == nil {
		return "", apperror.NewAppError(apperror.ErrUnavailable, "Image uploads are not configured", "", nil)
	}
	if err := ValidateImage(file.Filename, int64(len(file.Data))); err != nil {
		return "", err
	}

	img, err := utils.CompressImage(bytes.NewReader(file.Data), len(file.Data), target)
	if err != nil {
		return "", apperror.NewInvalidInput("could not read image", err)
	}
	m.log.Debug("📸 Compressed image",
		zap.String("folder", folder),
		zap.Int("from_bytes", len(file.Data)),
		zap.Int("to_bytes", len(img.Data)),
		zap.Int("quality", img.Quality))

	url, err := m.uploader.Upload(ctx, img.Data, folder, uuid.NewString())
	if err != nil {
		m.log.Error("❌ Image upload failed", err, zap.String("folder", folder))
		return "", apperror.NewRetryable("Upload failed. Please try again.", err)
	}
	return url, nil
}
