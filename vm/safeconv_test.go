package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeInt64ToIntRoundTrips(t *testing.T) {
	n, err := SafeInt64ToInt(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestSafeUint64ToUint16RejectsOverflow(t *testing.T) {
	_, err := SafeUint64ToUint16(1 << 20)
	assert.Error(t, err)

	v, err := SafeUint64ToUint16(65535)
	assert.NoError(t, err)
	assert.Equal(t, uint16(65535), v)
}
