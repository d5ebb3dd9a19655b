package perchbase

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/sha3"
)

// CacheKey hashes a logical key into the fixed-width key stored on disk.
func CacheKey(key string) []byte {
	hash := sha3.Sum224([]byte(key))
	return []byte(hex.EncodeToString(hash[:]))
}

// Fingerprint is a short stable digest of value, used to name stored records.
func Fingerprint(value string) string {
	hash := sha3.Sum224([]byte(value))
	return hex.EncodeToString(hash[:6])
}

func compress(data []byte) ([]byte, error) {
	var b bytes.Buffer
	gz, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
