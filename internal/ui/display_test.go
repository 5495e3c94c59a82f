package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanStatusRendersCurrentCounts(t *testing.T) {
	var out bytes.Buffer
	s := NewScanStatus(&out, "crawling")

	s.SetPages(3)
	s.SetScripts(1)
	s.Done()

	text := out.String()
	require.Contains(t, text, "pages=3")
	require.Contains(t, text, "scripts=1")
	require.True(t, strings.HasSuffix(text, "\n"))
}
