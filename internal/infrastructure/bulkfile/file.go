package bulkfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// FileType is a supported spreadsheet format
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLS  FileType = "xls"
	FileTypeXLSX FileType = "xlsx"
)

// MaxFileSize is the hard upload ceiling. A buffer at the limit
// passes; one byte over fails.
const MaxFileSize = 50 * 1024 * 1024

// Encoding names reported by detection
const (
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "iso-8859-1"
	EncodingWin1252 = "windows-1252"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
)

// minimum chardet confidence before trusting a non-UTF-8 guess
const encodingConfidenceFloor = 50

// FileInfo is the outcome of whole-file validation
type FileInfo struct {
	Valid    bool     `json:"valid"`
	Type     FileType `json:"file_type"`
	Encoding string   `json:"encoding"`
	Size     int64    `json:"size"`
}

// Content signatures checked before the extension is consulted
var (
	sigZIP  = []byte{0x50, 0x4B, 0x03, 0x04}
	sigOLE  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	sigPDF  = []byte("%PDF-")
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigGIF  = []byte("GIF8")
)

// xlsx files are ZIP containers holding a [Content_Types].xml entry
var xlsxMarker = []byte("[Content_Types].xml")

// Validate performs format, size and encoding checks on an uploaded
// file before any parsing or business logic runs. The content
// signature wins over the extension: a PDF, image or plain ZIP is
// rejected whatever its name claims. Encoding detection is best-guess
// and never fatal; a low-confidence guess falls back to UTF-8.
func Validate(data []byte, filename string) (FileInfo, error) {
	size := int64(len(data))
	if size == 0 {
		return FileInfo{}, ErrEmptyFile
	}
	if size > MaxFileSize {
		return FileInfo{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, MaxFileSize)
	}

	fileType, err := detectType(data, filename)
	if err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Valid: true,
		Type:  fileType,
		Size:  size,
	}

	// Binary spreadsheet containers declare their own encoding.
	if fileType == FileTypeCSV {
		info.Encoding = DetectEncoding(data)
	} else {
		info.Encoding = EncodingUTF8
	}

	return info, nil
}

// detectType sniffs magic bytes first and falls back to the extension
// for signature-less text formats
func detectType(data []byte, filename string) (FileType, error) {
	switch {
	case bytes.HasPrefix(data, sigPDF),
		bytes.HasPrefix(data, sigPNG),
		bytes.HasPrefix(data, sigJPEG),
		bytes.HasPrefix(data, sigGIF):
		return "", fmt.Errorf("%w: content signature is not a spreadsheet", ErrUnsupportedFormat)

	case bytes.HasPrefix(data, sigZIP):
		// Only OOXML zips qualify; a plain zip archive is rejected.
		if bytes.Contains(data, xlsxMarker) {
			return FileTypeXLSX, nil
		}
		return "", fmt.Errorf("%w: zip archive is not an xlsx workbook", ErrUnsupportedFormat)

	case bytes.HasPrefix(data, sigOLE):
		return FileTypeXLS, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FileTypeCSV, nil
	case ".xls", ".xlsx":
		// Declared binary format without the matching signature.
		return "", fmt.Errorf("%w: %s content does not match its extension", ErrUnsupportedFormat, filename)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// DetectEncoding guesses the text encoding of data. BOMs are decisive,
// then anything that already decodes as UTF-8 stays UTF-8; chardet's
// statistical detection only weighs in on the remaining byte mixes,
// and UTF-8 is used whenever confidence is low or the charset is
// unrecognized.
func DetectEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	}

	if utf8.Valid(data) {
		return EncodingUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < encodingConfidenceFloor {
		return EncodingUTF8
	}

	switch strings.ToLower(result.Charset) {
	case "utf-8":
		return EncodingUTF8
	case "iso-8859-1":
		return EncodingLatin1
	case "windows-1252":
		return EncodingWin1252
	case "utf-16le":
		return EncodingUTF16LE
	case "utf-16be":
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// Decode converts data from the named encoding to UTF-8, stripping any
// BOM. Unknown encodings pass through unchanged; a wrong guess shows
// up downstream as field-level validation errors, which is the
// intended failure mode.
func Decode(data []byte, encodingName string) []byte {
	var enc encoding.Encoding
	switch encodingName {
	case EncodingLatin1:
		enc = charmap.ISO8859_1
	case EncodingWin1252:
		enc = charmap.Windows1252
	case EncodingUTF16LE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	}
	return bytes.TrimPrefix(decoded, []byte{0xEF, 0xBB, 0xBF})
}
