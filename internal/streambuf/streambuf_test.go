package streambuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteConsumeRoundTrip(t *testing.T) {
	var b Buffer
	b.Write([]byte{1, 2, 3})
	b.Write([]byte{4, 5})
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, b.Peek())

	b.Consume(2)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []byte{3, 4, 5}, b.Peek())
}

func TestConsumeCompactsAfterHalfConsumed(t *testing.T) {
	var b Buffer
	b.Write([]byte{1, 2, 3, 4})
	b.Consume(3)
	assert.Equal(t, 0, b.read)
	assert.Equal(t, []byte{4}, b.Peek())
	b.Write([]byte{5, 6})
	assert.Equal(t, []byte{4, 5, 6}, b.Peek())
}
