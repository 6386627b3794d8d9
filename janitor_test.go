package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"znappystore/models"
)

func TestScanOrphansReportsUntrackedBlobs(t *testing.T) {
	srv, store, _ := newTestServer(t)
	user := seedUser(t, store, "demo@znappystore.com", "demo123", "Demo User")

	tracked := filepath.Join(srv.cfg.UploadDir, "abc_tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("tracked"), 0644))
	require.NoError(t, store.CreateFile(&models.File{
		ID: "tracked", Filename: "abc_tracked.txt", OriginalName: "tracked.txt",
		MimeType: "text/plain", Size: 7, UserID: user.ID,
		FilePath: tracked, UploadDate: time.Now(),
	}))

	stray := filepath.Join(srv.cfg.UploadDir, "def_stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("stray"), 0644))

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	srv.scanOrphans()

	out := buf.String()
	assert.Contains(t, out, "def_stray.txt")
	assert.NotContains(t, out, "abc_tracked.txt")
	assert.Contains(t, out, "1 untracked blob")
}
