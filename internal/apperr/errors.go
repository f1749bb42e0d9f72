package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrDestinationMissing = errors.New("destination folder does not exist")
	ErrNameCollision      = errors.New("a file with the same name exists at the destination")
	ErrFolderCollision    = errors.New("a folder with the same name exists at the destination")
	ErrStoreOperation     = errors.New("store operation failed")
)
