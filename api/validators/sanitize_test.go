package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "PostNord", SanitizeString("  PostNord \n", 64))
	assert.Equal(t, "PN12", SanitizeString("PN123SE", 4))
	assert.Equal(t, "kund@example.se", SanitizeString(" kund@example.se ", 0))
	assert.Equal(t, "Åhlén", SanitizeString("Åhléns", 5), "cuts on runes, not bytes")
	assert.Equal(t, "AB12", SanitizeString("AB\x0012", 0))
}
