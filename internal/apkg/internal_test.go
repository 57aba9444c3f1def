package apkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortField(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Birds_0.png", sortField(`<img src="Birds_0.png">`))
	assert.Equal(t, "a & b", sortField(`<b>a &amp; b</b>`))
	assert.Equal(t, "", sortField(""))
}

func TestChecksum(t *testing.T) {
	t.Parallel()
	// sha1("") = da39a3ee...
	assert.Equal(t, int64(0xda39a3ee), checksum(""))
	assert.Equal(t, checksum("x"), checksum("x"))
}
