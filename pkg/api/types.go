package api

import (
	"github.com/rdblue/avro/pkg/registry"
	"github.com/rdblue/avro/pkg/schema"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRequest carries the schema JSON to register.
type RegisterRequest struct {
	Schema string `json:"schema"`
}

// RegisterResponse returns the ID the schema was stored under.
type RegisterResponse struct {
	ID string `json:"id"`
}

// SchemaResponse returns one stored schema.
type SchemaResponse struct {
	ID     string `json:"id"`
	Schema string `json:"schema"`
}

// CompatRequest names the writer/reader pair to check.
type CompatRequest struct {
	WriterID string `json:"writer_id"`
	ReaderID string `json:"reader_id"`
}

// CompatResponse reports the compatibility verdict.
type CompatResponse struct {
	Compatible bool `json:"compatible"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// IRegistry defines the registry operations the server depends on.
type IRegistry interface {
	Register(schemaJSON []byte) (string, error)
	Get(id string) (schema.Schema, []byte, error)
	List() ([]registry.Entry, error)
	CheckCompat(writerID, readerID string) (bool, error)
}
