package ingest

import "errors"

var ErrNoElements = errors.New("element list is empty")
