package oracle

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Schema tags which canonicalization produced an attestation. Old schemas are
// frozen so their signatures stay verifiable; new encodings get new variants.
type Schema uint8

const (
	// SchemaV1 signs the raw "newFEN|result" text. The concatenation is not
	// injective, which is why it is legacy-only.
	SchemaV1 Schema = 1
	// SchemaV2 signs keccak256 over (gameID, newFEN, result).
	SchemaV2 Schema = 2
	// SchemaV3 signs keccak256 over (gameID, priorFEN, newFEN, outcome code).
	// Carrying the prior position distinguishes transitions that reach the
	// same resulting position from different starting points.
	SchemaV3 Schema = 3
)

var ErrUnknownSchema = errors.New("unknown canonicalization schema")

func ParseSchema(v int) (Schema, error) {
	switch v {
	case 1:
		return SchemaV1, nil
	case 2:
		return SchemaV2, nil
	case 3:
		return SchemaV3, nil
	}

	return 0, fmt.Errorf("%w: %d", ErrUnknownSchema, v)
}

// Transition is the logical input of the canonicalizer.
type Transition struct {
	GameID   uint64
	PriorFEN string
	NewFEN   string
	Outcome  Outcome
}

// Field type tags of the v2/v3 encodings. Part of the wire format, never
// renumber. A tag plus a length prefix pins every field boundary, so bytes
// cannot be shifted between fields without changing the digest.
const (
	tagUint256 byte = 0x01
	tagString  byte = 0x02
	tagUint8   byte = 0x03
)

// Message returns the byte sequence handed to the signer for t. For v1 that
// is the raw text, for v2/v3 the keccak256 digest of the encoded tuple.
func (s Schema) Message(t Transition) ([]byte, error) {
	switch s {
	case SchemaV1:
		return []byte(t.NewFEN + "|" + t.Outcome.Result()), nil
	case SchemaV2:
		var buf []byte
		buf = appendUint256(buf, t.GameID)
		buf = appendString(buf, t.NewFEN)
		buf = appendString(buf, t.Outcome.Result())

		return crypto.Keccak256(buf), nil
	case SchemaV3:
		var buf []byte
		buf = appendUint256(buf, t.GameID)
		buf = appendString(buf, t.PriorFEN)
		buf = appendString(buf, t.NewFEN)
		buf = append(buf, tagUint8, byte(t.Outcome))

		return crypto.Keccak256(buf), nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownSchema, uint8(s))
}

func appendUint256(buf []byte, v uint64) []byte {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], v)

	buf = append(buf, tagUint256)

	return append(buf, word[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, tagString)
	//nolint:gosec // FEN strings are far below 4 GiB
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))

	return append(buf, s...)
}
