package utils

import (
	"io"
	"os"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8192

// IsBinary reports whether the provided byte slice appears to contain binary data.
// A slice is binary iff it contains a NUL byte. Binaries without a NUL in
// their sniffed prefix are deliberately classified as text; downstream
// behavior depends on this exact rule.
func IsBinary(data []byte) bool {
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// IsFileBinary reads up to sniffLength bytes from the file at path and determines
// if the content appears to be binary. Unreadable files are reported as text so
// the read error surfaces later with context.
func IsFileBinary(path string) bool {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return false
	}
	return IsBinary(buffer[:bytesRead])
}
