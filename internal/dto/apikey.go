package dto

import (
	"time"

	"github.com/yukikurage/taskaza-api/internal/models"
)

// APIKeyDTO represents an API key without its secret
type APIKeyDTO struct {
	ID         uint64     `json:"id"`
	Prefix     string     `json:"prefix"`
	CreatedAt  time.Time  `json:"created_at"`
	Revoked    bool       `json:"revoked"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// APIKeyCreatedDTO is returned once, at creation, and carries the raw key
type APIKeyCreatedDTO struct {
	APIKeyDTO
	Key string `json:"key"`
}

// ToAPIKeyDTO converts an APIKey model to APIKeyDTO
func ToAPIKeyDTO(key models.APIKey) APIKeyDTO {
	return APIKeyDTO{
		ID:         key.ID,
		Prefix:     key.Prefix,
		CreatedAt:  key.CreatedAt,
		Revoked:    key.Revoked,
		LastUsedAt: key.LastUsedAt,
	}
}

// ToAPIKeyDTOs converts a slice of keys
func ToAPIKeyDTOs(keys []models.APIKey) []APIKeyDTO {
	items := make([]APIKeyDTO, len(keys))
	for i, key := range keys {
		items[i] = ToAPIKeyDTO(key)
	}
	return items
}
