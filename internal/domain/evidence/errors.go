package evidence

import "errors"

var (
	ErrUploadNotFound  = errors.New("evidence upload not found")
	ErrInvalidMimeType = errors.New("unsupported image type")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrEmptyFile       = errors.New("file is empty")
)
