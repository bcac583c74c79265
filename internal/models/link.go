package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupLink is a shared resource (course page, drive folder, chat) pinned to a group
type GroupLink struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   string    `gorm:"type:uuid;not null;index" json:"group_id"`
	CreatedBy string    `gorm:"type:uuid;not null" json:"created_by"`
	URL       string    `gorm:"size:2000;not null" json:"url"`
	Title     *string   `gorm:"size:200" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new link
func (l *GroupLink) BeforeCreate(tx *gorm.DB) error {
	l.ID = newID(l.ID)
	return nil
}

// TableName specifies the table name for the GroupLink model
func (GroupLink) TableName() string {
	return "group_links"
}

// GroupLinkView is a link together with the display name of the member who added it
type GroupLinkView struct {
	GroupLink
	CreatorName string `json:"creator_name"`
}

// LinkRequest creates or replaces a link; an empty title clears it
type LinkRequest struct {
	URL   string `json:"url" binding:"required,max=2000"`
	Title string `json:"title" binding:"max=200"`
}
