// Package services builds and owns every folio service from one config.
//
// Both binaries go through Open: foliod hands the result to the HTTP
// server, folioctl uses the pieces it needs (content seeding, ingestion,
// the MCP server). Close releases the store, vector index and embedder.
package services
