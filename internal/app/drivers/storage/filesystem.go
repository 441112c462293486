package storage

import (
	"log"

	"github.com/spf13/afero"
)

// NewFilesystem returns the OS filesystem the queue areas live on.
func NewFilesystem() afero.Fs {
	log.Println("Using local filesystem for queue areas")
	return afero.NewOsFs()
}
