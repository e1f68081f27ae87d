package upload

import "errors"

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrTerminalState  = errors.New("upload already in a terminal state")
	ErrEmptyFilename  = errors.New("upload filename is empty")
)
