package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
)

// Расширения по типу содержимого. Тип определяется по первым байтам
// файла, не по заголовку клиента.
var uploadExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// UploadHandler принимает изображения для каталога и подтверждения оплаты.
type UploadHandler struct {
	cfg *config.UploadConfig
	log *logger.Logger
}

// NewUploadHandler создает обработчик загрузки файлов.
func NewUploadHandler(cfg *config.UploadConfig, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		cfg: cfg,
		log: log,
	}
}

// UploadResponse описывает результат успешной загрузки.
type UploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (h *UploadHandler) maxSize() int64 {
	mb := h.cfg.MaxSizeMB
	if mb <= 0 {
		mb = 5
	}
	return int64(mb) << 20
}

// Upload обрабатывает POST с multipart-полем "image".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize()+1024)
	if err := r.ParseMultipartForm(h.maxSize()); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	if header.Size > h.maxSize() {
		writeErrorResponse(w, http.StatusBadRequest, "File too large")
		return
	}

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		h.log.Error("failed to read uploaded file: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	head = head[:n]

	contentType := detectImageType(head, header.Filename)
	ext, ok := uploadExtensions[contentType]
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.log.Error("failed to rewind uploaded file: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	if err := os.MkdirAll(h.cfg.Dir, 0o755); err != nil {
		h.log.Error("failed to create upload directory: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	filename := fmt.Sprintf("image-%d-%s%s", time.Now().Unix(), uuid.New().String(), ext)
	dstPath := filepath.Join(h.cfg.Dir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		h.log.Error("failed to create upload file: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to save file")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dstPath)
		h.log.Error("failed to write upload file: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	h.log.Info(fmt.Sprintf("uploaded file %s (%d bytes)", filename, size))

	writeJSONResponse(w, http.StatusOK, &UploadResponse{
		Success:  true,
		URL:      strings.TrimSuffix(h.cfg.PublicPath, "/") + "/" + filename,
		Filename: filename,
		Size:     size,
	})
}

// Delete обрабатывает DELETE /api/upload/image/{filename}.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/api/upload/image/")
	// Имя файла не должно выходить за пределы каталога загрузок.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	path := filepath.Join(h.cfg.Dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			writeErrorResponse(w, http.StatusNotFound, "File not found")
			return
		}
		h.log.Error("failed to delete upload file: " + err.Error())
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

// detectImageType определяет тип изображения по содержимому. SVG не
// распознается http.DetectContentType как image/svg+xml, поэтому для
// него дополнительно проверяем расширение поверх текстового типа.
func detectImageType(head []byte, originalName string) string {
	ct := http.DetectContentType(head)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if (ct == "text/xml" || ct == "text/plain") &&
		strings.EqualFold(filepath.Ext(originalName), ".svg") &&
		strings.Contains(string(head), "<svg") {
		return "image/svg+xml"
	}
	return ct
}
