package color

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFprintfStripsMarkersForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	Fprintf(&buf, "{green}✓{reset} Container {bold}%s{reset} is up\n", "web-1a2b3c4d")
	assert.Equal(t, "✓ Container web-1a2b3c4d is up\n", buf.String())
}

func TestLineHelpers(t *testing.T) {
	var buf bytes.Buffer
	Successf(&buf, "done %d", 1)
	Warningf(&buf, "careful")
	Errorf(&buf, "failed: %s", "boom")
	assert.Equal(t, "done 1\ncareful\nfailed: boom\n", buf.String())
}
