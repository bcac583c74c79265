package models

import (
	"time"

	"gorm.io/gorm"
)

// Poll represents a group vote
type Poll struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID            string     `gorm:"type:uuid;not null;index" json:"group_id"`
	Title              string     `gorm:"size:200;not null" json:"title"`
	Description        *string    `gorm:"size:1000" json:"description"`
	AllowMultipleVotes bool       `gorm:"not null;default:false" json:"allow_multiple_votes"`
	IsAnonymous        bool       `gorm:"not null;default:false" json:"is_anonymous"`
	EndsAt             *time.Time `gorm:"index" json:"ends_at"`
	CreatedBy          string     `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

// PollOption is one choice of a poll
type PollOption struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	PollID     string    `gorm:"type:uuid;not null;index" json:"poll_id"`
	OptionText string    `gorm:"size:200;not null" json:"option_text"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// PollVote records that a user picked an option
type PollVote struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PollID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_poll_votes_unique;index" json:"poll_id"`
	OptionID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_poll_votes_unique" json:"option_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_poll_votes_unique" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// Ended reports whether the poll no longer accepts votes at t
func (p Poll) Ended(t time.Time) bool {
	return p.EndsAt != nil && p.EndsAt.Before(t)
}

// BeforeCreate hook is called before creating a new poll
func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}

// BeforeCreate hook is called before creating a new poll option
func (o *PollOption) BeforeCreate(tx *gorm.DB) error {
	o.ID = newID(o.ID)
	return nil
}

// BeforeCreate hook is called before creating a new vote
func (v *PollVote) BeforeCreate(tx *gorm.DB) error {
	v.ID = newID(v.ID)
	return nil
}

// TableName specifies the table name for the Poll model
func (Poll) TableName() string {
	return "polls"
}

// TableName specifies the table name for the PollOption model
func (PollOption) TableName() string {
	return "poll_options"
}

// TableName specifies the table name for the PollVote model
func (PollVote) TableName() string {
	return "poll_votes"
}

// CreatePollRequest represents the data needed to create a poll
type CreatePollRequest struct {
	Title              string     `json:"title" binding:"required,max=200"`
	Description        string     `json:"description" binding:"max=1000"`
	Options            []string   `json:"options" binding:"required,min=2,dive,max=200"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	IsAnonymous        bool       `json:"is_anonymous"`
	EndsAt             *time.Time `json:"ends_at"`
}

// VoteRequest picks (or retracts) an option
type VoteRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// OptionResult is a poll option with its vote count
type OptionResult struct {
	PollOption
	VoteCount  int `json:"vote_count"`
	Percentage int `json:"percentage"`
}

// PollResults is a poll together with its tallies as seen by one viewer
type PollResults struct {
	Poll
	Options    []OptionResult `json:"options"`
	UserVotes  []string       `json:"user_votes"`
	TotalVotes int            `json:"total_votes"`
}
