package models

import (
	"crypto/md5"
	"fmt"
	"time"
)

// ContentEntry is what was last written to a destination file.
type ContentEntry struct {
	FilePath    string    `json:"file_path"`
	ContentHash string    `json:"content_hash"`
	Size        int64     `json:"size"`
	WrittenAt   time.Time `json:"written_at"`
}

func NewContentEntry(filePath string, content []byte) ContentEntry {
	return ContentEntry{
		FilePath:    filePath,
		ContentHash: HashContent(content),
		Size:        int64(len(content)),
		WrittenAt:   time.Now(),
	}
}

// CacheStats provides metrics about cache performance
type CacheStats struct {
	TotalFiles  int       `json:"total_files"`
	CacheHits   int64     `json:"cache_hits"`
	CacheMisses int64     `json:"cache_misses"`
	HitRate     float64   `json:"hit_rate"`
	LastUpdate  time.Time `json:"last_update"`
}

func HashContent(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
