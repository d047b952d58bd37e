// Package agiloftmcp provides an MCP server for the Agiloft REST API.
//
// It exposes contract lifecycle management (contracts, companies, contacts,
// attachments, contract types) to tool-calling AI clients through the Model
// Context Protocol. Every registered entity gets a uniform set of tools
// (search, get, create, update, delete, upsert, attachments, action buttons)
// generated from a single declarative entity registry, so adding a new
// Agiloft table is a pure data change.
//
// # Quick Start
//
// Install the server:
//
//	go install github.com/kadirpekel/agiloft-mcp/cmd/agiloft-mcp@latest
//
// Create a configuration file:
//
//	agiloft:
//	  base_url: "https://example.saas.agiloft.com/ewws/alrest/Demo KB"
//	  username: "admin"
//	  password: "${AGILOFT_PASSWORD}"
//	  kb: "Demo KB"
//
// Start the server over stdio (the default MCP transport):
//
//	agiloft-mcp serve --config config.yaml
//
// Or over streamable HTTP with health and metrics endpoints:
//
//	agiloft-mcp serve --config config.yaml --transport http
package agiloftmcp
