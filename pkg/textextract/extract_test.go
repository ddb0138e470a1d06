package textextract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("first message\n\n  second message  \nthird\n")
	tr, err := Extract(bytes.NewReader(data), int64(len(data)), ".txt")
	require.NoError(t, err)

	assert.Equal(t, []string{"first message", "second message", "third"}, tr.Lines())
}

func TestExtractUnsupportedType(t *testing.T) {
	data := []byte("x")
	_, err := Extract(bytes.NewReader(data), 1, ".exe")
	assert.Error(t, err)
}

func TestStripXMLTags(t *testing.T) {
	out := stripXMLTags("<w:p><w:t>hello</w:t> <w:t>world</w:t></w:p>")
	assert.Equal(t, "hello world", out)
}
