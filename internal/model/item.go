package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ItemType categorizes the unit of ingested content
type ItemType string

const (
	ItemTypeArticle ItemType = "article"
	ItemTypePost    ItemType = "post"
	ItemTypeMessage ItemType = "message"
)

// Item is a unit of ingested content. Immutable once created; many claims
// may reference one item. ContentHash is the dedup key.
type Item struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	Title       string    `json:"title,omitempty"`
	URL         string    `json:"url,omitempty"`
	RawText     string    `json:"raw_text"`
	ItemType    ItemType  `json:"item_type"`
	PublishedAt time.Time `json:"published_at"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentHash string    `json:"content_hash"`
}

// ContentHash computes the dedup key for raw content. Whitespace is
// normalized so trivial reformatting does not defeat deduplication.
func ContentHash(raw string) string {
	normalized := strings.Join(strings.Fields(raw), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
