package events

import (
	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

const (
	NodeInsertedEvent      = "bom.node.inserted"
	InsertionRejectedEvent = "bom.node.rejected"
	MRPCalculatedEvent     = "mrp.calculated"
	NotificationEvent      = "notification"

	// BOMStream collects node and MRP events, NotificationStream user-facing messages
	BOMStream          = "bom"
	NotificationStream = "notifications"
)

type NodeInserted struct {
	Name     entities.MaterialName `json:"name"`
	Parent   entities.MaterialName `json:"parent,omitempty"`
	Quantity entities.Quantity     `json:"quantity"`
}

type InsertionRejected struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Reason string `json:"reason"`
}

type MRPCalculated struct {
	Materials int `json:"materials"`
	Roots     int `json:"roots"`
}
