package model

import "time"

// Evolution gateway connection states stored in evolution_configs.status.
const (
	EvolutionStatusConnected    = "CONNECTED"
	EvolutionStatusDisconnected = "DISCONNECTED"
	EvolutionStatusError        = "ERROR"
)

// EvolutionConfig is a member's connection to the Evolution WhatsApp
// gateway.  The API key is encrypted at rest; the repository stores and
// returns the ciphertext, decryption happens in the service layer.  Any
// gateway call that fails flips the status to ERROR with a message.
type EvolutionConfig struct {
	UserID          string     // evolution_configs.user_id
	BaseURL         string     // evolution_configs.base_url
	APIKeyEncrypted string     // evolution_configs.api_key_encrypted
	Status          string     // evolution_configs.status
	LastCheckedAt   *time.Time // evolution_configs.last_checked_at (nullable)
	LastError       *string    // evolution_configs.last_error (nullable)
	CreatedAt       time.Time  // evolution_configs.created_at
	UpdatedAt       time.Time  // evolution_configs.updated_at
}
