package redis

import (
	"fmt"

	"github.com/mcoot/wordparty/internal/store"
)

// Key prefix for all game-related data
const keyPrefix = "wpgame"

// rootField holds a scalar stored directly at a bucket path
const rootField = "@"

// Each record is stored as one hash per bucket, where a bucket is the first
// two path segments (e.g. parties/ABC123). Hash fields are leaf paths
// relative to the bucket.

// bucketOf splits a path into its bucket and the path relative to it
func bucketOf(path string) (bucket string, rel string, err error) {
	segs, err := store.Split(path)
	if err != nil {
		return "", "", err
	}
	if len(segs) < 2 {
		return "", "", fmt.Errorf("%w: %q is above record level", store.ErrInvalidPath, path)
	}
	return store.Join(segs[:2]...), store.Join(segs[2:]...), nil
}

// treeKey returns the Redis key of the hash holding a bucket
func treeKey(bucket string) string {
	return fmt.Sprintf("%s:tree:%s", keyPrefix, bucket)
}

// notifyChannel returns the pub/sub channel announcing writes to a bucket
func notifyChannel(bucket string) string {
	return fmt.Sprintf("%s:notify:%s", keyPrefix, bucket)
}

// fieldFor maps a relative path to its hash field
func fieldFor(rel string) string {
	if rel == "" {
		return rootField
	}
	return rel
}

// conflicts reports whether an existing field must be cleared before writing at rel
func conflicts(field, rel string) bool {
	if rel == "" || field == rootField {
		return true
	}
	return store.Related(field, rel)
}
