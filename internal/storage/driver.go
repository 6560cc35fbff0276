package storage

import "github.com/gameshots/uploader/internal/apperr"

// Driver names accepted by New.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// New creates a Client for the named driver.
func New(driver string, opts Options) (Client, error) {
	var (
		c   Client
		err error
	)
	switch driver {
	case DriverMinio:
		c, err = NewMinioClient(opts)
	case DriverS3:
		c, err = NewS3Client(opts)
	default:
		return nil, apperr.Configuration("unknown storage driver " + driver)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
