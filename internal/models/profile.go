package models

import (
	"time"

	"gorm.io/datatypes"
)

// Weekdays and TimeSlots are the keys used in Availability
var (
	Weekdays  = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
	TimeSlots = []string{"morning", "afternoon", "evening"}
)

// Availability maps a weekday key to the time slots a user is free
type Availability map[string][]string

// Profile holds the contact and study details of a user.
// The ID is the user id issued by the auth provider.
type Profile struct {
	ID                 string                           `gorm:"type:uuid;primaryKey" json:"id"`
	Email              *string                          `gorm:"size:255" json:"email,omitempty"`
	DisplayName        *string                          `gorm:"size:100" json:"display_name"`
	University         *string                          `gorm:"size:200" json:"university"`
	Faculty            *string                          `gorm:"size:200" json:"faculty"`
	StudyProgram       *string                          `gorm:"size:200" json:"study_program"`
	Semester           *int                             `json:"semester"`
	Bio                *string                          `gorm:"size:1000" json:"bio"`
	AvatarURL          *string                          `gorm:"size:500" json:"avatar_url"`
	Availability       datatypes.JSONType[Availability] `json:"availability"`
	Skills             datatypes.JSONSlice[string]      `json:"skills"`
	PreferredGroupSize int                              `gorm:"not null;default:4" json:"preferred_group_size"`
	ProfileCompleted   bool                             `gorm:"not null;default:false" json:"profile_completed"`
	CreatedAt          time.Time                        `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                        `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// MemberProfile is the public view of a group member; it never carries an email address
type MemberProfile struct {
	ID                 string       `json:"id"`
	DisplayName        *string      `json:"display_name"`
	University         *string      `json:"university"`
	Faculty            *string      `json:"faculty"`
	StudyProgram       *string      `json:"study_program"`
	Semester           *int         `json:"semester"`
	Bio                *string      `json:"bio"`
	AvatarURL          *string      `json:"avatar_url"`
	Availability       Availability `json:"availability"`
	Skills             []string     `json:"skills"`
	PreferredGroupSize int          `json:"preferred_group_size"`
	Role               MemberRole   `json:"role"`
}

// Public strips sensitive columns from a profile
func (p Profile) Public(role MemberRole) MemberProfile {
	return MemberProfile{
		ID:                 p.ID,
		DisplayName:        p.DisplayName,
		University:         p.University,
		Faculty:            p.Faculty,
		StudyProgram:       p.StudyProgram,
		Semester:           p.Semester,
		Bio:                p.Bio,
		AvatarURL:          p.AvatarURL,
		Availability:       p.Availability.Data(),
		Skills:             []string(p.Skills),
		PreferredGroupSize: p.PreferredGroupSize,
		Role:               role,
	}
}

// UpsertProfileRequest represents the editable profile fields
type UpsertProfileRequest struct {
	Email              string       `json:"email" binding:"omitempty,email"`
	DisplayName        string       `json:"display_name" binding:"max=100"`
	University         string       `json:"university" binding:"max=200"`
	Faculty            string       `json:"faculty" binding:"max=200"`
	StudyProgram       string       `json:"study_program" binding:"max=200"`
	Semester           *int         `json:"semester" binding:"omitempty,min=1,max=12"`
	Bio                string       `json:"bio" binding:"max=1000"`
	Skills             []string     `json:"skills"`
	Availability       Availability `json:"availability"`
	PreferredGroupSize int          `json:"preferred_group_size" binding:"omitempty,min=2,max=8"`
}
