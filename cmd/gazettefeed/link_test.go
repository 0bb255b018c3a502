package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunLink(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	doc := filepath.Join(dir, "post.md")
	db := filepath.Join(dir, "links.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("# Guide\nHelp for distressed business buyers.\n"), 0o600))
	require.NoError(t, os.WriteFile(db, []byte("- url: https://adminlist.co.uk/buyers\n  keywords: [distressed business buyers]\n"), 0o600))

	linkMaxLinks = 5
	linkKeyword = "buyers"
	t.Cleanup(func() { linkKeyword = "" })

	var out, summary bytes.Buffer
	require.NoError(t, runLink(&out, &summary, doc, db))

	assert.Equal(t, "# Guide\nHelp for [distressed business buyers](https://adminlist.co.uk/buyers).\n", out.String())
	assert.Contains(t, summary.String(), "links added: 1")
	assert.Contains(t, summary.String(), "https://adminlist.co.uk/buyers")
	assert.Contains(t, summary.String(), `keyword "buyers": 2 of 7 words`)
}

func TestRunLink_MissingFile(t *testing.T) {
	logger = zap.NewNop()
	var out, summary bytes.Buffer
	err := runLink(&out, &summary, filepath.Join(t.TempDir(), "nope.md"), "unused.json")
	assert.ErrorContains(t, err, "read document")
}
