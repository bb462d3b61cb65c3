package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte signatures for accepted resume formats
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
	".docx": {{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Strict MIME types - DO NOT include application/octet-stream
var strictMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	// DOCX detection fallback
	"application/zip": true,
}

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. MIME type whitelist (application/octet-stream only tolerated for .docx)
func ValidateFile(filename string, data []byte, detectedMIME string) FileValidationResult {
	result := FileValidationResult{
		DetectedMIME: detectedMIME,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !allowedExtensions[ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	if detectedMIME == "application/octet-stream" {
		// .docx is often sniffed as octet-stream; magic bytes already matched
		if ext != ".docx" {
			result.Error = "binary files not allowed; file type could not be determined"
			return result
		}
	} else if !strictMIMETypes[detectedMIME] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if !allowedExtensions[ext] {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}
