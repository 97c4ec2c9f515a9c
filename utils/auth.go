package utils

import (
	"slices"

	"discord-blog/command"
	"discord-blog/models"

	"github.com/bwmarrin/discordgo"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.AuthConfig
}

// NewAuth creates an Auth from the configured developers and admin roles.
func NewAuth(config models.AuthConfig) *Auth {
	return &Auth{config: config}
}

// Restricted reports whether any developer or admin role is configured.
// Without one, every user may run every command.
func (a *Auth) Restricted() bool {
	return len(a.config.Developers) > 0 || len(a.config.AdminRoles) > 0
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	return slices.Contains(a.config.Developers, userID)
}

// IsAdmin checks if a member has an admin role.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, role := range member.Roles {
		if slices.Contains(a.config.AdminRoles, role) {
			return true
		}
	}
	return false
}

// CheckPermission checks if a user has the required permission level.
func (a *Auth) CheckPermission(member *discordgo.Member, userID, requiredLevel string) bool {
	switch requiredLevel {
	case command.LevelEveryone:
		return true
	case command.LevelAdmin:
		return !a.Restricted() || a.IsDeveloper(userID) || a.IsAdmin(member)
	default:
		return false
	}
}
