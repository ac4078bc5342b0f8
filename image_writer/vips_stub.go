//go:build !vips

package image_writer

import "errors"

func newVipsEncoder(Options) (Encoder, error) {
	return nil, errors.New("vips backend not built in, rebuild with -tags vips")
}
