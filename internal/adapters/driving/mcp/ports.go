package mcp

import (
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval answers similarity queries over the indexed records.
	Retrieval driving.RetrievalService

	// Chat answers questions and exposes chat history. Optional; without it
	// the ask tool and chat resources report the chat as unavailable.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
