package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditadas.
const (
	AuditActionCreateProduct  = "CREATE_PRODUCT"
	AuditActionUpdateProduct  = "UPDATE_PRODUCT"
	AuditActionDeleteProduct  = "DELETE_PRODUCT"
	AuditActionStockIn        = "STOCK_IN"
	AuditActionStockOut       = "STOCK_OUT"
	AuditActionStockAdjust    = "STOCK_ADJUSTMENT"
	AuditActionStockTransfer  = "STOCK_TRANSFER"
	AuditActionResolveAlert   = "RESOLVE_ALERT"
	AuditActionIgnoreAlert    = "IGNORE_ALERT"
)

// Actor identifica a quién ejecuta una mutación, con el contexto de request
// que entrega la capa de autenticación (externa a este motor).
type Actor struct {
	ID        string
	IP        string
	UserAgent string
	SessionID string
}

// AuditEntry registra quién hizo qué, sobre qué recurso y con qué snapshots
// antes/después. Write-once: este motor nunca la actualiza ni la borra.
type AuditEntry struct {
	ID         string
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	Before     json.RawMessage
	After      json.RawMessage
	IP         string
	UserAgent  string
	SessionID  string
	CreatedAt  time.Time
}
