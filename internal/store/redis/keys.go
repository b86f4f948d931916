package redis

import (
	"fmt"
	"strconv"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

const (
	// KeyPrefixComment is the prefix for comment records
	KeyPrefixComment = "pinned:comment:"
	// KeyPrefixPage is the prefix for per-page id indexes
	KeyPrefixPage = "pinned:page:"
	// KeyPrefixStatus is the prefix for per-status id indexes
	KeyPrefixStatus = "pinned:status:"
	// KeyAllComments is the sorted set of every comment id
	KeyAllComments = "pinned:comments:all"
	// KeyCommentSeq is the id sequence counter
	KeyCommentSeq = "pinned:comments:seq"
)

// CommentKey returns the Redis key for a comment by ID
func CommentKey(id int64) string {
	return KeyPrefixComment + strconv.FormatInt(id, 10)
}

// PageKey returns the index key for a page URL
func PageKey(pageURL string) string {
	return KeyPrefixPage + pageURL
}

// StatusKey returns the index key for a status
func StatusKey(status domain.Status) string {
	return KeyPrefixStatus + string(status)
}

// ExtractCommentID extracts the comment ID from a Redis key
func ExtractCommentID(key string) (int64, error) {
	if len(key) <= len(KeyPrefixComment) {
		return 0, fmt.Errorf("invalid comment key: %s", key)
	}
	id, err := strconv.ParseInt(key[len(KeyPrefixComment):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid comment key: %s", key)
	}
	return id, nil
}
