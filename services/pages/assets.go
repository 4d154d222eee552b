package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/utils"
)

// AssetUploader stores page assets (section images, logos) in S3 and hands
// back public URLs for use inside section content.
type AssetUploader struct {
	uploader *s3manager.Uploader
	bucket   string
}

// NewAssetUploader creates the S3-backed uploader from app config.
func NewAssetUploader(cfg *config.App) (*AssetUploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3Region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &AssetUploader{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.S3Bucket,
	}, nil
}

// Upload stores one file under the community's asset prefix.
func (au *AssetUploader) Upload(communityID uint, filename string, body io.Reader) (string, error) {
	key := fmt.Sprintf("communities/%d/assets/%s%s", communityID, uuid.NewString(), filepath.Ext(filename))

	result, err := au.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(au.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	return result.Location, nil
}

// handleUploadAsset accepts a multipart "file" field and returns the stored
// asset's public URL.
func handleUploadAsset(uploader *AssetUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.BadRequestResponse(c, "file field is required")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read uploaded file")
			return
		}
		defer file.Close()

		url, err := uploader.Upload(id, fileHeader.Filename, file)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to store asset")
			return
		}

		utils.CreatedResponse(c, "Asset uploaded successfully", gin.H{
			"url":      url,
			"filename": fileHeader.Filename,
		})
	}
}
