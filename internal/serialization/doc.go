// Package serialization writes and validates SafeTensors files.
//
// Format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header size bytes: JSON header]
//	[tensor data: contiguous little-endian bytes]
//
// The header maps tensor names to {dtype, shape, data_offsets} and may carry
// a string->string "__metadata__" entry. Tensors are laid out in
// alphabetical order by name. The writer records a SHA-256 of the data
// section under the MetadataChecksum key; readers may verify it.
package serialization
