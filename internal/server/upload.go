package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// maxPhotoSize caps uploaded photos at 10MB.
const maxPhotoSize = 10 << 20

// parseRequestSubmission extracts the request text and optional photo
// from either a multipart form (browser submission) or a JSON body. The
// store only ever sees the resolved image reference, or nil when no photo
// was attached.
func (h *handlers) parseRequestSubmission(c *gin.Context) (string, *string, error) {
	ct := c.ContentType()
	if strings.HasPrefix(ct, "multipart/form-data") {
		userInfo := c.PostForm("userInfo")
		file, err := c.FormFile("photo")
		if err != nil {
			if err == http.ErrMissingFile {
				return userInfo, nil, nil
			}
			return "", nil, fmt.Errorf("read photo: %w", err)
		}
		ref, err := h.savePhoto(c, file)
		if err != nil {
			return "", nil, err
		}
		return userInfo, &ref, nil
	}

	var body struct {
		UserInfo string  `json:"userInfo"`
		ImageURL *string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", nil, err
	}
	return body.UserInfo, body.ImageURL, nil
}

// savePhoto validates and stores an uploaded photo, returning its public
// reference under /uploads.
func (h *handlers) savePhoto(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxPhotoSize {
		return "", fmt.Errorf("photo exceeds %d bytes", int64(maxPhotoSize))
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", fmt.Errorf("photo must be an image")
	}
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename))
	dest := filepath.Join(h.uploadsDir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return "/uploads/" + name, nil
}
