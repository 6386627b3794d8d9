package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"znappystore/models"
	"znappystore/pkg/fileval"
)

// maxBulkDelete caps the number of ids one bulk request may carry.
const maxBulkDelete = 100

// multipartOverhead is the slack MaxBytesReader allows on top of the file
// size cap for multipart framing. Anything past it is cut off at the
// transport before validation ever runs.
const multipartOverhead = 64 * 1024

// Server holds the injected stores and configuration behind all handlers.
type Server struct {
	cfg   Config
	users UserStore
	files FileStore
}

func newServer(cfg Config, users UserStore, files FileStore) *Server {
	return &Server{cfg: cfg, users: users, files: files}
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.POST("/api/auth/login", s.loginHandler)
	r.POST("/api/auth/validate", s.validateHandler)
	r.GET("/api/health", s.optionalAuth(), s.healthHandler)

	authGroup := r.Group("/api")
	authGroup.Use(s.requireAuth())
	authGroup.POST("/upload", s.uploadHandler)
	authGroup.GET("/files", s.listFilesHandler)
	authGroup.DELETE("/files/bulk", s.bulkDeleteHandler)
	authGroup.GET("/files/:id", s.downloadHandler)
	authGroup.GET("/files/:id/preview", s.previewHandler)
	authGroup.GET("/files/:id/info", s.fileInfoHandler)
	authGroup.DELETE("/files/:id", s.deleteFileHandler)
}

// fileView is the public projection of a file record; the stored path never
// leaves the server.
func fileView(f *models.File) gin.H {
	return gin.H{
		"id":            f.ID,
		"filename":      f.OriginalName,
		"size":          f.Size,
		"type":          f.MimeType,
		"category":      fileval.Category(f.MimeType),
		"uploadDate":    f.UploadDate,
		"formattedSize": fileval.FormatSize(f.Size),
	}
}

// uploadHandler receives one multipart file, validates it, writes the blob
// under the upload root and inserts its metadata row. Nothing is written for
// rejected uploads, and a failed insert removes the just-written blob.
func (s *Server) uploadHandler(c *gin.Context) {
	user, _ := currentUser(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxFileSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload failed", "message": "No file provided"})
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if err := fileval.Validate(mimeType, fh.Filename, fh.Size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Upload failed",
			"message": strings.Join(fileval.Reasons(err), "; "),
		})
		return
	}

	// The stored name is fully server-derived: a random token plus a
	// sanitized copy of the original base name for humans inspecting the
	// directory. The original name never ends up in a path.
	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), fileval.SafeFilename(fh.Filename))
	fullPath := filepath.Join(s.cfg.UploadDir, storedName)

	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		log.Printf("upload: mkdir %s failed: %v", s.cfg.UploadDir, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "message": "An error occurred during file upload"})
		return
	}
	if err := c.SaveUploadedFile(fh, fullPath); err != nil {
		log.Printf("upload: writing blob failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "message": "An error occurred during file upload"})
		return
	}

	file := &models.File{
		ID:           uuid.NewString(),
		Filename:     storedName,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         fh.Size,
		UserID:       user.ID,
		FilePath:     fullPath,
	}
	if err := s.files.CreateFile(file); err != nil {
		log.Printf("upload: metadata insert failed: %v", err)
		// Compensating delete so no untracked blob persists.
		if rmErr := os.Remove(fullPath); rmErr != nil {
			log.Printf("upload: orphan blob cleanup failed for %s: %v", fullPath, rmErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "message": "An error occurred during file upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"file":    fileView(file),
	})
}

func (s *Server) listFilesHandler(c *gin.Context) {
	user, _ := currentUser(c)

	files, err := s.files.FindFilesByUserID(user.ID)
	if err != nil {
		log.Printf("list files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve files", "message": "An error occurred while retrieving your files"})
		return
	}

	views := make([]gin.H, 0, len(files))
	for i := range files {
		views = append(views, fileView(&files[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Files retrieved successfully",
		"files":   views,
		"count":   len(views),
	})
}

// ownedFile resolves the id to a record owned by the caller, writing the 404
// or 403 response itself when that fails. Nonexistent and foreign-owned are
// deliberately distinguishable here, unlike the login flow.
func (s *Server) ownedFile(c *gin.Context, id string) *models.File {
	file, err := s.files.FindFileByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "message": "The requested file does not exist"})
		} else {
			log.Printf("file lookup %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred"})
		}
		return nil
	}
	user, _ := currentUser(c)
	if file.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "message": "You do not have permission to access this file"})
		return nil
	}
	return file
}

func (s *Server) downloadHandler(c *gin.Context) {
	file := s.ownedFile(c, c.Param("id"))
	if file == nil {
		return
	}
	if _, err := os.Stat(file.FilePath); err != nil {
		// Row exists, blob doesn't: recoverable inconsistency, not a crash.
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "message": "The file no longer exists on the server"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	c.Header("Content-Type", file.MimeType)
	c.File(file.FilePath)
}

// previewHandler serves the blob inline and cacheable; file content at a
// given id is immutable once uploaded.
func (s *Server) previewHandler(c *gin.Context) {
	file := s.ownedFile(c, c.Param("id"))
	if file == nil {
		return
	}
	if _, err := os.Stat(file.FilePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "message": "The file no longer exists on the server"})
		return
	}

	c.Header("Content-Type", file.MimeType)
	c.Header("Cache-Control", "public, max-age=3600")
	c.File(file.FilePath)
}

func (s *Server) fileInfoHandler(c *gin.Context) {
	file := s.ownedFile(c, c.Param("id"))
	if file == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": fileView(file)})
}

// deleteFileHandler removes the metadata row first (the row is the source of
// truth for existence), then unlinks the blob best-effort. A blob that is
// already gone is logged and ignored; a failed row delete leaves the blob
// untouched.
func (s *Server) deleteFileHandler(c *gin.Context) {
	file := s.ownedFile(c, c.Param("id"))
	if file == nil {
		return
	}

	if err := s.files.DeleteFile(file.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost the race with a concurrent delete.
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "message": "The requested file does not exist"})
			return
		}
		log.Printf("delete %s: row delete failed: %v", file.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed", "message": "Failed to delete file from database"})
		return
	}

	s.removeBlob(file)

	c.JSON(http.StatusOK, gin.H{
		"message": "File deleted successfully",
		"file":    gin.H{"id": file.ID, "filename": file.OriginalName},
	})
}

func (s *Server) removeBlob(file *models.File) {
	if err := os.Remove(file.FilePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("delete %s: blob already absent at %s", file.ID, file.FilePath)
		} else {
			log.Printf("delete %s: blob removal failed: %v", file.ID, err)
		}
	}
}

// bulkDeleteHandler processes each id independently and classifies it into
// exactly one bucket. A single bad id never aborts the batch; only an empty
// or oversized id list fails the request itself.
func (s *Server) bulkDeleteHandler(c *gin.Context) {
	user, _ := currentUser(c)

	var req struct {
		FileIDs []string `json:"fileIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.FileIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": "File IDs array is required"})
		return
	}
	if len(req.FileIDs) > maxBulkDelete {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files", "message": "Cannot delete more than 100 files at once"})
		return
	}

	deleted := make([]gin.H, 0)
	failed := make([]gin.H, 0)
	notFound := make([]string, 0)
	accessDenied := make([]gin.H, 0)

	for _, id := range req.FileIDs {
		file, err := s.files.FindFileByID(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				notFound = append(notFound, id)
			} else {
				log.Printf("bulk delete %s: lookup failed: %v", id, err)
				failed = append(failed, gin.H{"id": id, "error": "Lookup failed"})
			}
			continue
		}
		if file.UserID != user.ID {
			accessDenied = append(accessDenied, gin.H{"id": id, "filename": file.OriginalName})
			continue
		}
		if err := s.files.DeleteFile(id); err != nil {
			if errors.Is(err, ErrNotFound) {
				notFound = append(notFound, id)
			} else {
				log.Printf("bulk delete %s: row delete failed: %v", id, err)
				failed = append(failed, gin.H{"id": id, "filename": file.OriginalName, "error": "Database deletion failed"})
			}
			continue
		}
		s.removeBlob(file)
		deleted = append(deleted, gin.H{"id": file.ID, "filename": file.OriginalName})
	}

	totalFailed := len(failed) + len(notFound) + len(accessDenied)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Bulk delete completed: %d deleted, %d failed", len(deleted), totalFailed),
		"summary": gin.H{
			"requested": len(req.FileIDs),
			"deleted":   len(deleted),
			"failed":    totalFailed,
		},
		"results": gin.H{
			"deleted":      deleted,
			"failed":       failed,
			"notFound":     notFound,
			"accessDenied": accessDenied,
		},
	})
}
