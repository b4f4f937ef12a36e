package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insh/value"
)

func TestExtractNumberInt(t *testing.T) {
	v, err := extractNumber("exit status: 42 done")
	assert.NoError(t, err)
	assert.Equal(t, value.Int(42), v)
}

func TestExtractNumberFloat(t *testing.T) {
	v, err := extractNumber("pi is roughly 3.14!")
	assert.NoError(t, err)
	assert.Equal(t, value.Float(3.14), v)
}

func TestExtractNumberNoDigits(t *testing.T) {
	_, err := extractNumber("no numbers here")
	assert.Error(t, err)
}
