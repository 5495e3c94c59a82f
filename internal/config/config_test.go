package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlagsMinimal(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{"https://example.com"}, &out)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", c.SeedURL)
	require.Equal(t, "default", c.Format)
}

func TestParseFlagsRequiresSeedURL(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{"--format", "json"}, &out)
	require.Error(t, err)
}

func TestParseFlagsHeadersRepeatable(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{
		"-H", "Authorization: Bearer abc",
		"--header", "X-Test: 1",
		"https://example.com",
	}, &out)
	require.NoError(t, err)
	require.Len(t, c.Headers, 2)
	require.Equal(t, "Authorization", c.Headers[0].Name)
	require.Equal(t, "Bearer abc", c.Headers[0].Value)
	require.Equal(t, "X-Test", c.Headers[1].Name)
	require.Equal(t, "1", c.Headers[1].Value)
}

func TestParseFlagsRejectsBadFormat(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{"--format", "xml", "https://example.com"}, &out)
	require.Error(t, err)
}

func TestVerbosityRaisesLogLevel(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{"-v", "-v", "https://example.com"}, &out)
	require.NoError(t, err)
	require.Equal(t, "debug", c.LogLevel())
}

func TestMaxPagesAndDepth(t *testing.T) {
	c := NewConfig()
	var out bytes.Buffer
	err := c.ParseFlags([]string{"--max-pages", "10", "--max-depth", "3", "https://example.com"}, &out)
	require.NoError(t, err)
	require.Equal(t, 10, c.MaxPages)
	require.Equal(t, 3, c.MaxDepth)
}
