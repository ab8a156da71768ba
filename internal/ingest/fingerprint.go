package ingest

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"

	"revpulse/internal/sources"
)

// Fingerprint returns a BLAKE2b-256 digest identifying a discovered source
// set by identity, labels and content. Any change to any source, or to the
// order of sources, changes the fingerprint.
func Fingerprint(srcs []sources.RawSource) string {
	h, _ := blake2b.New256(nil)

	writeUint(h, uint64(len(srcs)))
	for _, s := range srcs {
		writeField(h, []byte(s.ID))
		writeField(h, []byte(s.Strategy))
		writeField(h, []byte(s.Format))
		writeField(h, []byte(s.Location))
		writeField(h, []byte(s.Period))
		writeField(h, s.Data)
		if s.ReadErr != nil {
			writeField(h, []byte(s.ReadErr.Error()))
		} else {
			writeField(h, nil)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes b so adjacent fields cannot run together
func writeField(h hash.Hash, b []byte) {
	writeUint(h, uint64(len(b)))
	h.Write(b)
}

func writeUint(h hash.Hash, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
}
