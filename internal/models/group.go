package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberRole represents a user's role inside a group
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// DefaultMaxMembers is used when a group is created without an explicit limit
const DefaultMaxMembers = 5

// Group represents a study group
type Group struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description *string    `gorm:"size:500" json:"description"`
	Subject     *string    `gorm:"size:200" json:"subject"`
	InviteCode  string     `gorm:"size:32;not null;uniqueIndex" json:"invite_code"`
	MaxMembers  int        `gorm:"not null;default:5" json:"max_members"`
	Deadline    *time.Time `json:"deadline"`
	CreatedBy   string     `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

// GroupMember associates a user with a group
type GroupMember struct {
	ID       string     `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID  string     `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user" json:"group_id"`
	UserID   string     `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user;index" json:"user_id"`
	Role     MemberRole `gorm:"size:10;not null;default:'member'" json:"role"`
	JoinedAt time.Time  `gorm:"not null" json:"joined_at"`
}

// GroupSummary is what an invite code reveals about a group
type GroupSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Subject     *string    `json:"subject"`
	MaxMembers  int        `json:"max_members"`
	Deadline    *time.Time `json:"deadline"`
	MemberCount int64      `json:"member_count"`
}

// BeforeCreate hook is called before creating a new group
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	g.ID = newID(g.ID)
	if g.MaxMembers == 0 {
		g.MaxMembers = DefaultMaxMembers
	}
	return nil
}

// BeforeCreate hook is called before creating a new membership
func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	m.ID = newID(m.ID)
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	return nil
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "groups"
}

// TableName specifies the table name for the GroupMember model
func (GroupMember) TableName() string {
	return "group_members"
}

// CreateGroupRequest represents the data needed to create a new group
type CreateGroupRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Description string     `json:"description" binding:"max=500"`
	Subject     string     `json:"subject" binding:"max=200"`
	MaxMembers  int        `json:"max_members" binding:"omitempty,min=2,max=10"`
	Deadline    *time.Time `json:"deadline"`
}

// JoinGroupRequest carries an invite code
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// InviteRequest asks the service to email an invite code to someone
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}
