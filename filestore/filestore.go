// Package filestore keeps uploaded medical documents on local disk.
package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// LegacyPlaceholderPrefix marks hashes issued before files were stored
// locally. They resolve to generated placeholder content.
const LegacyPlaceholderPrefix = "QmMockHash"

var (
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("Invalid file type. Only images, PDFs, and documents are allowed.")
	ErrInvalidName     = errors.New("invalid file name")
	ErrNotFound        = errors.New("File not found")
)

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// StoredFile describes a saved upload. Hash is the name clients use to
// fetch it back.
type StoredFile struct {
	Hash         string    `json:"fileHash"`
	OriginalName string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"uploadDate"`
}

// Content is a file ready to be served.
type Content struct {
	Path        string
	Data        []byte
	ContentType string
}

type Store struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

// New creates the upload directory if needed.
func New(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize, now: time.Now}, nil
}

func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save sniffs and stores r under a unique name derived from originalName.
func (s *Store) Save(originalName string, r io.Reader) (*StoredFile, error) {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return nil, ErrInvalidName
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}

	detected := mimetype.Detect(data)
	contentType, ok := allowedType(detected, base)
	if !ok {
		return nil, ErrUnsupportedType
	}

	now := s.now()
	hash := fmt.Sprintf("%d_%s_%s", now.UnixMilli(), uuid.New().String()[:8], sanitize(base))
	if err := os.WriteFile(filepath.Join(s.dir, hash), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return &StoredFile{
		Hash:         hash,
		OriginalName: base,
		ContentType:  contentType,
		Size:         int64(len(data)),
		UploadDate:   now,
	}, nil
}

// Open resolves hash to servable content.
func (s *Store) Open(hash string) (*Content, error) {
	if hash == "" || hash != filepath.Base(hash) || strings.ContainsAny(hash, `/\`) || hash == ".." {
		return nil, ErrInvalidName
	}

	if strings.HasPrefix(hash, LegacyPlaceholderPrefix) {
		return placeholder(hash), nil
	}

	path := filepath.Join(s.dir, hash)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, ErrNotFound
	}
	return &Content{Path: path, ContentType: ContentTypeFor(hash)}, nil
}

// ContentTypeFor maps a file name to its content type by extension.
func ContentTypeFor(name string) string {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func allowedType(detected *mimetype.MIME, name string) (string, bool) {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range allowedTypes {
			if m.Is(allowed) {
				return allowed, true
			}
		}
	}
	// Legacy Word documents sniff as a generic OLE container.
	if detected.Is("application/x-ole-storage") && strings.EqualFold(filepath.Ext(name), ".doc") {
		return "application/msword", true
	}
	return "", false
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, name)
}

func placeholder(hash string) *Content {
	if imageExtensions[strings.ToLower(filepath.Ext(hash))] {
		var buf bytes.Buffer
		buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300">`)
		buf.WriteString(`<rect width="100%" height="100%" fill="#f0f0f0"/>`)
		buf.WriteString(`<text x="50%" y="50%" font-family="Arial" font-size="16" fill="#666" text-anchor="middle">Medical Image Placeholder</text>`)
		buf.WriteString(`</svg>`)
		return &Content{Data: buf.Bytes(), ContentType: "image/svg+xml"}
	}
	body := "Mock Medical Document\n\nFile Hash: " + hash + "\n\nThis is a placeholder for a medical document that was uploaded before file storage was enabled."
	return &Content{Data: []byte(body), ContentType: "text/plain"}
}
