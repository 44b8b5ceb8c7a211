package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores files as image assets. The public id is the path without
// its extension; the extension is appended again when building URLs.
type Cloudinary struct {
	cld     *cloudinary.Cloudinary
	upload  func(ctx context.Context, content []byte, params uploader.UploadParams) error
	destroy func(ctx context.Context, params uploader.DestroyParams) error
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	// The analytics query would land in front of the appended extension.
	cld.Config.URL.Analytics = false

	c := &Cloudinary{cld: cld}
	c.upload = func(ctx context.Context, content []byte, params uploader.UploadParams) error {
		_, err := cld.Upload.Upload(ctx, bytes.NewReader(content), params)
		return err
	}
	c.destroy = func(ctx context.Context, params uploader.DestroyParams) error {
		_, err := cld.Upload.Destroy(ctx, params)
		return err
	}
	return c, nil
}

func (c *Cloudinary) Put(ctx context.Context, filePath string, content []byte, _ string) error {
	rel, err := cleanPath(filePath)
	if err != nil {
		return err
	}
	if err := c.upload(ctx, content, uploader.UploadParams{
		PublicID:     publicID(rel),
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	}); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

func (c *Cloudinary) Delete(ctx context.Context, filePath string) error {
	rel, err := cleanPath(filePath)
	if err != nil {
		return err
	}
	if err := c.destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(rel),
		ResourceType: "image",
	}); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func (c *Cloudinary) URL(filePath string) string {
	asset, err := c.cld.Image(publicID(filePath))
	if err != nil {
		return ""
	}
	u, err := asset.String()
	if err != nil {
		return ""
	}
	return u + path.Ext(filePath)
}

func publicID(filePath string) string {
	return strings.TrimSuffix(strings.TrimPrefix(filePath, "/"), path.Ext(filePath))
}
