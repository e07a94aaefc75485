package models

// Scope identifies the tenant and acting user for an engine call. Every
// service method takes it explicitly instead of reading ambient request
// state, so tenant isolation is visible at each call site.
type Scope struct {
	TenantID string `json:"tenant_id"`
	ActorID  string `json:"actor_id"`
}
