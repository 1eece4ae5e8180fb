package typeddata

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	hashLength    = 32
	trailerLength = 2
)

// PackWrappedSignature assembles the wrapped signature the on-chain verifier
// decodes:
//
//	signature ‖ domainHash (32) ‖ contentsHash (32) ‖ encodedType ‖ uint16-be type length
//
// The signature segment is opaque and variable length; the trailer length
// lets the verifier find the boundary between it and the hash material.
func PackWrappedSignature(signature, domainHash, contentsHash []byte, encodedType string) ([]byte, error) {
	if len(domainHash) != hashLength {
		return nil, fmt.Errorf("domain hash must be %d bytes, got %d", hashLength, len(domainHash))
	}
	if len(contentsHash) != hashLength {
		return nil, fmt.Errorf("contents hash must be %d bytes, got %d", hashLength, len(contentsHash))
	}
	if len(encodedType) > math.MaxUint16 {
		return nil, fmt.Errorf("encoded type of %d bytes exceeds the 2-byte length field", len(encodedType))
	}

	out := make([]byte, 0, len(signature)+2*hashLength+len(encodedType)+trailerLength)
	out = append(out, signature...)
	out = append(out, domainHash...)
	out = append(out, contentsHash...)
	out = append(out, encodedType...)

	var trailer [trailerLength]byte
	binary.BigEndian.PutUint16(trailer[:], uint16(len(encodedType)))
	return append(out, trailer[:]...), nil
}

// WrappedSignature is the decoded form of a packed wrapped signature.
type WrappedSignature struct {
	Signature    []byte
	DomainHash   [32]byte
	ContentsHash [32]byte
	EncodedType  string
}

// SplitWrappedSignature is the exact inverse of PackWrappedSignature. It is
// driven by the trailing length field, so it works for any inner signature
// length, including zero.
func SplitWrappedSignature(b []byte) (*WrappedSignature, error) {
	if len(b) < 2*hashLength+trailerLength {
		return nil, fmt.Errorf("wrapped signature of %d bytes is shorter than the fixed segments", len(b))
	}
	typeLen := int(binary.BigEndian.Uint16(b[len(b)-trailerLength:]))
	sigLen := len(b) - trailerLength - typeLen - 2*hashLength
	if sigLen < 0 {
		return nil, fmt.Errorf("encoded type length %d exceeds the wrapped signature", typeLen)
	}

	ws := &WrappedSignature{
		Signature:   append([]byte(nil), b[:sigLen]...),
		EncodedType: string(b[sigLen+2*hashLength : len(b)-trailerLength]),
	}
	copy(ws.DomainHash[:], b[sigLen:sigLen+hashLength])
	copy(ws.ContentsHash[:], b[sigLen+hashLength:sigLen+2*hashLength])
	return ws, nil
}
