package movies

import "errors"

var (
	ErrNotFound       = errors.New("movie not found")
	ErrDuplicateTitle = errors.New("a movie with that title already exists")
	ErrInvalidInput   = errors.New("invalid input")
)
