// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"learnadmin/internal/backend"
	"learnadmin/internal/envelope"
	"learnadmin/internal/imaging"
	"learnadmin/internal/storage"
)

// maxUploadSize is the maximum allowed file upload size (50 MB).
const maxUploadSize = 50 << 20

// allowedUploadTypes defines MIME types accepted for direct upload.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"video/mp4":       true,
	"video/webm":      true,
	"application/pdf": true,
}

// uploadResult describes a stored file.
type uploadResult struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Upload stores a multipart file. With object storage configured the
// file goes straight to the bucket; otherwise the request is streamed to
// the backend upload endpoint unchanged.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if a.uploader == nil {
		a.forwardUpload(w, r)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			envelope.Fail(w, r, &envelope.RequestError{Status: http.StatusRequestEntityTooLarge, Message: "File too large. Maximum size is 50 MB"})
			return
		}
		envelope.Fail(w, r, envelope.BadRequest("Request must be multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		envelope.Fail(w, r, envelope.BadRequest("No file provided"))
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := file.Read(sniff)
	if err != nil && err != io.EOF {
		envelope.Fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := detectContentType(header.Filename, sniff[:n])
	if !allowedUploadTypes[contentType] {
		envelope.Fail(w, r, envelope.BadRequest(fmt.Sprintf("File type %q is not allowed", contentType)))
		return
	}

	data, err := readAllFrom(file)
	if err != nil {
		envelope.Fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	folder := uploadFolder(r.FormValue("folder"))
	ctx, cancel := context.WithTimeout(r.Context(), a.uploadTimeout)
	defer cancel()
	obj, err := a.uploader.Upload(ctx, folder, header.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		envelope.Fail(w, r, fmt.Errorf("upload %s: %w", header.Filename, err))
		return
	}

	result := uploadResult{
		URL:         obj.URL,
		Key:         obj.Key,
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        obj.Size,
	}
	if imaging.Thumbnailable(contentType) {
		result.ThumbnailURL = a.uploadThumbnail(ctx, folder, data, obj)
	}

	envelope.OK(w, http.StatusCreated, result, "File uploaded successfully")
}

// uploadThumbnail stores a thumbnail next to obj and returns its URL.
// Failures are logged and leave the upload without a thumbnail.
func (a *API) uploadThumbnail(ctx context.Context, folder string, data []byte, obj *storage.Object) string {
	thumb, err := imaging.Thumbnail(bytes.NewReader(data), imaging.ThumbnailWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", obj.Key)
		return ""
	}
	if thumb == nil {
		return ""
	}

	t, err := a.uploader.Upload(ctx, path.Join(folder, "thumbs"), "thumb.jpg", "image/jpeg", bytes.NewReader(thumb), int64(len(thumb)))
	if err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "key", obj.Key)
		return ""
	}
	return t.URL
}

// forwardUpload streams the multipart request to the backend.
func (a *API) forwardUpload(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		envelope.Fail(w, r, envelope.BadRequest("Request must be multipart/form-data"))
		return
	}

	resp, err := a.call(r, backend.Request{
		Method:      http.MethodPost,
		Path:        "upload",
		Upload:      r.Body,
		ContentType: contentType,
	})
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	message := resp.Message
	if message == "" {
		message = "File uploaded successfully"
	}
	envelope.OK(w, http.StatusCreated, resp.Data, message)
}

// detectContentType sniffs the first bytes of a file. SVGs sniff as XML or
// plain text and are recognized by extension.
func detectContentType(filename string, head []byte) string {
	contentType := http.DetectContentType(head)
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType
}

// readAllFrom rewinds a sniffed upload and reads it whole.
func readAllFrom(f io.ReadSeeker) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

// uploadFolder restricts the folder form value to a relative path.
func uploadFolder(raw string) string {
	folder := strings.Trim(path.Clean("/"+strings.TrimSpace(raw)), "/")
	if folder == "" {
		return "uploads"
	}
	return folder
}

// DeleteUpload removes a stored file addressed by its key or public URL.
func (a *API) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	if a.uploader == nil {
		envelope.Fail(w, r, &envelope.RequestError{Status: http.StatusServiceUnavailable, Message: "Object storage is not configured"})
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		if u := strings.TrimSpace(r.URL.Query().Get("url")); u != "" {
			var ok bool
			if key, ok = a.uploader.KeyFromURL(u); !ok {
				envelope.Fail(w, r, envelope.BadRequest("URL does not belong to the media bucket"))
				return
			}
		}
	}
	if key == "" {
		envelope.Fail(w, r, envelope.BadRequest("File key or URL is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.uploadTimeout)
	defer cancel()
	if err := a.uploader.Delete(ctx, key); err != nil {
		envelope.Fail(w, r, fmt.Errorf("delete upload: %w", err))
		return
	}
	envelope.OK(w, http.StatusOK, nil, "File deleted successfully")
}
