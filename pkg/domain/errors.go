package domain

import "errors"

// ErrDocumentNotFound is returned when a document id cannot be found in a store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrModuleNotFound is returned when an operation names a module that is not
// part of the document.
var ErrModuleNotFound = errors.New("module not found")
