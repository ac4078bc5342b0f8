//go:build !imagick && !vips

package image_writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionalBackendsNotBuilt(t *testing.T) {
	_, err := NewEncoder(Options{Format: "webp", Backend: "imagick"})
	assert.ErrorContains(t, err, "-tags imagick")

	_, err = NewEncoder(Options{Format: "webp", Backend: "vips"})
	assert.ErrorContains(t, err, "-tags vips")
}
