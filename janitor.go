package main

import (
	"log"
	"os"
	"path/filepath"
)

// scanOrphans walks the upload root once and logs every blob that has no
// metadata row. These are the inverse of the missing-blob 404 case; they are
// reported for operators, never deleted automatically.
func (s *Server) scanOrphans() {
	paths, err := s.files.FilePaths()
	if err != nil {
		log.Printf("janitor: listing file paths failed: %v", err)
		return
	}
	known := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		known[filepath.Clean(p)] = struct{}{}
	}

	entries, err := os.ReadDir(s.cfg.UploadDir)
	if err != nil {
		log.Printf("janitor: reading upload dir failed: %v", err)
		return
	}

	orphans := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Clean(filepath.Join(s.cfg.UploadDir, e.Name()))
		if _, ok := known[p]; !ok {
			log.Printf("janitor: untracked blob %s", p)
			orphans++
		}
	}
	if orphans > 0 {
		log.Printf("janitor: found %d untracked blob(s) under %s", orphans, s.cfg.UploadDir)
	}
}
