package analysis

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint derives the cache key from the request inputs. Subject ID is
// part of the hash so cached results never leak between subjects; wall-clock
// time is deliberately excluded so identical inputs replay identically.
// Each field is length-prefixed so bytes cannot shift between fields and
// collide two distinct requests onto one key.
func Fingerprint(req *AnalysisRequest) string {
	h := sha256.New()
	for _, field := range [][]byte{
		[]byte(req.Content),
		req.Image,
		req.Audio,
		[]byte(req.SubjectID),
	} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write(field)
	}
	return hex.EncodeToString(h.Sum(nil))
}
