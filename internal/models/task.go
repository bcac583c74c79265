package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskOpen, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority ranks tasks
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task represents a unit of work inside a group
type Task struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     string       `gorm:"type:uuid;not null;index" json:"group_id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description *string      `gorm:"size:1000" json:"description"`
	Status      TaskStatus   `gorm:"size:20;not null;default:'open';index" json:"status"`
	Priority    TaskPriority `gorm:"size:10;not null;default:'medium'" json:"priority"`
	AssignedTo  *string      `gorm:"type:uuid;index" json:"assigned_to"`
	DueDate     *time.Time   `gorm:"type:date;index" json:"due_date"`
	CreatedBy   string       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before creating a new task
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	t.ID = newID(t.ID)
	if t.Status == "" {
		t.Status = TaskOpen
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return nil
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// CreateTaskRequest represents the data needed to create a task.
// DueDate uses the calendar format 2006-01-02.
type CreateTaskRequest struct {
	Title       string       `json:"title" binding:"required,max=200"`
	Description string       `json:"description" binding:"max=1000"`
	Priority    TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  string       `json:"assigned_to"`
	DueDate     string       `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskStatusRequest changes a task's status
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" binding:"required,oneof=open in_progress completed"`
}

// AssignTaskRequest changes a task's assignee; an empty value unassigns
type AssignTaskRequest struct {
	AssignedTo string `json:"assigned_to"`
}
