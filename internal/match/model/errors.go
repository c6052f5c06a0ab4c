package model

import "errors"

// RawKey — служебный ключ записи загрузчика: исходная строка JSON Lines,
// чтобы объявление ушло в результат байт в байт.
const RawKey = "\x00raw"

var (
	// ErrEmptyModel is returned when a product has no usable model string.
	ErrEmptyModel = errors.New("product model is empty")

	// ErrEmptyTitle is returned when a listing record carries no title.
	ErrEmptyTitle = errors.New("listing title is empty")

	// ErrUnsupportedFile is returned for input files with an unknown extension.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrRunNotFound is returned when a stored run id does not exist.
	ErrRunNotFound = errors.New("run not found")
)
