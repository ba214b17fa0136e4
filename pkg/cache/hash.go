package cache

import (
	"crypto/sha256"
	"encoding/hex"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key returns prefix:sha256(parts). Parts are hashed in their JSON form,
// so structs contribute every exported field.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(hash[:])
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
