package materials

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxFileSizeBytes is the size ceiling for material files. Files of exactly
// this size are rejected too.
const MaxFileSizeBytes int64 = 20 * 1024 * 1024

var allowedExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"xls":  true,
	"xlsx": true,
	"ppt":  true,
	"pptx": true,
	"zip":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

var (
	unsafeNameChars = regexp.MustCompile(`[^\w.\- ]+`)
	whitespace      = regexp.MustCompile(`\s+`)
	dashes          = regexp.MustCompile(`-+`)
)

// FileError is a validation failure with a message meant for the user.
type FileError struct {
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// ValidatedFile is the outcome of a successful ValidateFile.
type ValidatedFile struct {
	Extension    string
	SafeFileName string
}

// ValidateFile checks size and extension and derives the storage-safe name.
func ValidateFile(name string, size int64) (*ValidatedFile, error) {
	if size <= 0 {
		return nil, &FileError{Message: "Selecione um arquivo valido."}
	}
	if size >= MaxFileSizeBytes {
		return nil, &FileError{Message: "O arquivo excede o limite de 20MB para materiais complementares."}
	}

	original := strings.TrimSpace(name)
	if original == "" {
		original = "arquivo"
	}
	ext := FileExtension(original)
	if ext == "" || !allowedExtensions[ext] {
		return nil, &FileError{Message: "Tipo de arquivo nao permitido. Use PDF, Office, ZIP, PNG ou JPG."}
	}

	safe := SanitizeFileName(original)
	if safe == "" {
		safe = "arquivo." + ext
	}
	return &ValidatedFile{Extension: ext, SafeFileName: safe}, nil
}

// SanitizeFileName strips accents and anything outside [A-Za-z0-9_.- ],
// turns whitespace into dashes and lowercases the result.
func SanitizeFileName(name string) string {
	s := norm.NFKD.String(name)
	s = unsafeNameChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

// FileExtension returns the lowercased text after the last dot, or "".
func FileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// LessonPrefix is the storage folder that holds a lesson's files.
func LessonPrefix(courseID, lessonID uuid.UUID) string {
	return fmt.Sprintf("courses/%s/lessons/%s/", courseID, lessonID)
}

// BuildStoragePath places a file under its lesson folder with a timestamp
// prefix.
func BuildStoragePath(courseID, lessonID uuid.UUID, safeName string, now time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return LessonPrefix(courseID, lessonID) + stamp + "-" + safeName
}

// FormatFileSize renders a byte count for humans, or "" when unknown.
func FormatFileSize(bytes *int64) string {
	if bytes == nil || *bytes <= 0 {
		return ""
	}
	if *bytes < 1024 {
		return fmt.Sprintf("%d B", *bytes)
	}
	kb := float64(*bytes) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.1f KB", kb)
	}
	return fmt.Sprintf("%.1f MB", kb/1024)
}
