//go:build !imagick

package image_writer

import "errors"

func newImagickEncoder(Options) (Encoder, error) {
	return nil, errors.New("imagick backend not built in, rebuild with -tags imagick")
}
