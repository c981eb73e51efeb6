// Package endian provides the byte order engine used for binary fields of transport records.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine interface.
// Every integer and floating point field of a SAS Transport file is big-endian,
// regardless of the host that wrote it, so the record codec only ever asks for
// the transport engine.
//
// # Basic Usage
//
//	import "github.com/arloliu/xport/endian"
//
//	engine := endian.GetTransportEngine()
//	engine.PutUint16(b[0:2], ntype)
//	buf = engine.AppendUint32(buf, npos)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetTransportEngine returns the engine for transport file fields, which is big-endian.
func GetTransportEngine() EndianEngine {
	return binary.BigEndian
}
