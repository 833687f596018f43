package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a per-project membership role.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// ValidRole reports whether r is one of the known membership roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Member ties a user to a project with a role.
type Member struct {
	User primitive.ObjectID `bson:"user" json:"user"`
	Role Role               `bson:"role" json:"role"`
}

// Project is the top-level collaboration document. The owner is always
// present in Members with the Admin role.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Members     []Member           `bson:"members" json:"members"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MemberOf returns the membership entry for userID, or nil.
func (p *Project) MemberOf(userID primitive.ObjectID) *Member {
	for i := range p.Members {
		if p.Members[i].User == userID {
			return &p.Members[i]
		}
	}
	return nil
}

// IsMember reports whether userID belongs to the project.
func (p *Project) IsMember(userID primitive.ObjectID) bool {
	return p.MemberOf(userID) != nil
}

// IsAdmin reports whether userID holds the Admin role in the project.
func (p *Project) IsAdmin(userID primitive.ObjectID) bool {
	m := p.MemberOf(userID)
	return m != nil && m.Role == RoleAdmin
}
