// Package mcp exposes the portfolio and its knowledge base to AI agents over
// the Model Context Protocol.
//
// The server runs on the stdio transport (folioctl mcp) and calls the
// internal services directly. Tools:
//
//   - knowledge_search: ranked search over uploaded documents
//   - case_studies_list: case studies, optionally filtered by technology
//   - timeline_list: the career timeline
//   - memory_recall: what a chat visitor has shared, ranked for a query
//   - tool_search: discover tools by name, description or keyword
//
// Inputs are validated with go-playground/validator and every text field in
// a result is scrubbed for secrets.
package mcp
