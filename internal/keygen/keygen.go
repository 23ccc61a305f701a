// Package keygen derives deterministic cache keys from request content.
//
// Keys are sha256 digests over a domain-separated encoding of the
// operation, NFC-normalized text, optional question, and options. Inputs at
// or above a configured cutoff are hashed in fixed-size chunks so peak
// per-write cost stays bounded regardless of text length; the digest is
// byte-identical to a full-buffer hash of the same content.
package keygen

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/metrics"
	"github.com/tildesmith/inkwell/internal/types"
)

const keyVersion = "v1"

const (
	markerAbsent  = 0x00
	markerPresent = 0x01
)

// Generator computes cache keys. It is stateless and safe for concurrent
// use.
type Generator struct {
	cutoff    int
	chunkSize int
	metrics   types.MetricsRecorder
}

// New creates a Generator from config. The metrics recorder is optional and
// strictly best-effort: key generation never fails because of it.
func New(cfg config.KeyConfig, recorder types.MetricsRecorder) *Generator {
	cutoff := cfg.StreamingCutoffBytes
	if cutoff <= 0 {
		cutoff = 32 * 1024
	}
	chunkSize := cfg.ChunkSizeBytes
	if chunkSize <= 0 {
		chunkSize = 8 * 1024
	}
	if recorder == nil {
		recorder = metrics.NewNoOp()
	}
	return &Generator{
		cutoff:    cutoff,
		chunkSize: chunkSize,
		metrics:   recorder,
	}
}

// Key derives the cache key for a request. An empty text is valid and hashes
// as the empty string. A nil question or nil options map hashes a distinct
// marker from an empty-but-present value, so the two never collide.
func (g *Generator) Key(op types.Operation, text string, question *string, options map[string]string) string {
	start := time.Now()

	normalized := norm.NFC.String(text)

	h := sha256.New()
	h.Write([]byte(keyVersion))
	h.Write([]byte(op.String()))

	g.writeSized(h, normalized)
	writeOptional(h, question)
	writeOptions(h, options)

	key := keyVersion + ":" + op.String() + ":" + hex.EncodeToString(h.Sum(nil))

	if g.metrics != nil {
		g.metrics.RecordKeyGen(op, len(normalized), time.Since(start))
	}

	return key
}

// KeyFor derives the cache key for a request struct.
func (g *Generator) KeyFor(req *types.Request) string {
	return g.Key(req.Operation, req.Text, req.Question, req.Options)
}

// OperationPrefix returns the key prefix shared by all entries of an
// operation, for pattern invalidation.
func OperationPrefix(op types.Operation) string {
	return keyVersion + ":" + op.String() + ":"
}

// writeSized writes a length-prefixed string, chunking writes for inputs at
// or above the streaming cutoff.
func (g *Generator) writeSized(h hash.Hash, s string) {
	writeLen(h, len(s))

	if len(s) < g.cutoff {
		h.Write([]byte(s))
		return
	}

	for i := 0; i < len(s); i += g.chunkSize {
		end := i + g.chunkSize
		if end > len(s) {
			end = len(s)
		}
		h.Write([]byte(s[i:end]))
	}
}

func writeOptional(h hash.Hash, s *string) {
	if s == nil {
		h.Write([]byte{markerAbsent})
		return
	}
	h.Write([]byte{markerPresent})
	normalized := norm.NFC.String(*s)
	writeLen(h, len(normalized))
	h.Write([]byte(normalized))
}

// writeOptions mixes options into the digest order-independently by sorting
// keys before writing.
func writeOptions(h hash.Hash, options map[string]string) {
	if options == nil {
		h.Write([]byte{markerAbsent})
		return
	}
	h.Write([]byte{markerPresent})
	writeLen(h, len(options))

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		writeLen(h, len(k))
		h.Write([]byte(k))
		v := options[k]
		writeLen(h, len(v))
		h.Write([]byte(v))
	}
}

func writeLen(h hash.Hash, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}
