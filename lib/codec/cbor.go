// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used on the cabinet's
// local Unix sockets (the gatekeeper card daemon and the persistence
// service). Encoding is Core Deterministic (RFC 8949 §4.2) so the
// same logical message always produces identical bytes; decoding
// ignores unknown fields for forward compatibility between the
// runtime and the daemons it talks to.
package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// The socket protocols only use string map keys. When decoding
		// into an any-typed target (gatekeeper user payloads are
		// map[string]any), pick map[string]any rather than the CBOR
		// default map[interface{}]interface{}, which nothing downstream
		// can consume.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to deterministic CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder. Type alias so consumers import
// only lib/codec, not the CBOR library directly.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// NewEncoder returns a stream encoder writing deterministic CBOR to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}
