// Package avro implements the Avro binary serialization format: a schema
// model with named, self-referential types, a schema-aware binary codec,
// and a resolution engine that decodes data written under one schema into
// values conforming to another.
//
// The library is split into focused packages:
//
//   - pkg/stream:    sequential byte readers and writers (memory, file)
//   - pkg/binary:    zigzag-varint and primitive wire codecs
//   - pkg/schema:    schema nodes, builder, equality, resolution matching
//   - pkg/datum:     in-memory values and schema validation
//   - pkg/codec:     the writer and reader/resolver engines
//   - pkg/container: object container files (blocks, codecs, sync markers)
//   - pkg/registry:  a pebble-backed schema registry
//
// This package holds the error model shared by all of them.
package avro
