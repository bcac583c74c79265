package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/models"

	"gorm.io/gorm"
)

// TaskService manages group tasks
type TaskService struct {
	db     *gorm.DB
	notify Notifications
}

func NewTaskService(db *gorm.DB, notify Notifications) *TaskService {
	return &TaskService{db: db, notify: notify}
}

// List returns the group's tasks, open ones first by due date
func (s *TaskService) List(ctx context.Context, actor Actor, groupID string) ([]models.Task, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date, created_at").
		Find(&tasks).Error
	return tasks, err
}

// Create stores a task and notifies the other members
func (s *TaskService) Create(ctx context.Context, actor Actor, groupID string, req models.CreateTaskRequest) (models.Task, error) {
	group, _, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return models.Task{}, err
	}
	if !validLength(req.Title, 1, 200) || len([]rune(req.Description)) > 1000 {
		return models.Task{}, ErrInvalidInput
	}

	task := models.Task{
		GroupID:     groupID,
		Title:       strings.TrimSpace(req.Title),
		Description: optional(req.Description),
		Priority:    req.Priority,
		CreatedBy:   actor.UserID,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return models.Task{}, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		task.DueDate = &due
	}
	if req.AssignedTo != "" {
		if err := s.checkAssignee(ctx, groupID, req.AssignedTo); err != nil {
			return models.Task{}, err
		}
		task.AssignedTo = &req.AssignedTo
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	data := email.Data{
		GroupName:       group.Name,
		TaskTitle:       task.Title,
		TaskDescription: deref(task.Description),
		Priority:        string(task.Priority),
		CreatorName:     actorName(ctx, s.db, actor.UserID),
	}
	if task.DueDate != nil {
		data.DueDate = email.FormatDate(*task.DueDate, time.UTC)
	}
	s.notify.Enqueue(NotifyRequest{GroupID: groupID, ExcludeUserID: actor.UserID, EmailType: email.TypeTaskCreated, EmailData: data})
	return task, nil
}

// UpdateStatus changes a task's status; any member may do this
func (s *TaskService) UpdateStatus(ctx context.Context, actor Actor, taskID string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	task, _, err := s.load(ctx, actor, taskID)
	if err != nil {
		return task, err
	}
	if err := s.db.WithContext(ctx).Model(&task).Update("status", status).Error; err != nil {
		return task, fmt.Errorf("update status: %w", err)
	}
	task.Status = status
	return task, nil
}

// Assign changes the assignee. A new assignee other than the actor gets an email.
func (s *TaskService) Assign(ctx context.Context, actor Actor, taskID, assignee string) (models.Task, error) {
	task, group, err := s.load(ctx, actor, taskID)
	if err != nil {
		return task, err
	}

	var value interface{}
	if assignee != "" {
		if err := s.checkAssignee(ctx, task.GroupID, assignee); err != nil {
			return task, err
		}
		value = assignee
	}
	if err := s.db.WithContext(ctx).Model(&task).Update("assigned_to", value).Error; err != nil {
		return task, fmt.Errorf("assign task: %w", err)
	}

	previous := deref(task.AssignedTo)
	if assignee == "" {
		task.AssignedTo = nil
		return task, nil
	}
	task.AssignedTo = &assignee

	if assignee != actor.UserID && assignee != previous {
		profiles, err := profilesByID(ctx, s.db, []string{assignee})
		if err == nil && emailOf(profiles[assignee]) != "" {
			p := profiles[assignee]
			data := email.Data{
				To:              emailOf(p),
				RecipientName:   displayName(p),
				GroupName:       group.Name,
				TaskTitle:       task.Title,
				TaskDescription: deref(task.Description),
				AssignerName:    actorName(ctx, s.db, actor.UserID),
			}
			if task.DueDate != nil {
				data.DueDate = email.FormatDate(*task.DueDate, time.UTC)
			}
			s.notify.EnqueueEmail(email.TypeTaskAssigned, data)
		}
	}
	return task, nil
}

// Delete removes a task; only its creator may do this
func (s *TaskService) Delete(ctx context.Context, actor Actor, taskID string) error {
	task, _, err := s.load(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != actor.UserID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&task).Error
}

func (s *TaskService) load(ctx context.Context, actor Actor, taskID string) (models.Task, models.Group, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return task, models.Group{}, ErrNotFound
	}
	if err != nil {
		return task, models.Group{}, fmt.Errorf("load task: %w", err)
	}
	group, _, err := requireMember(ctx, s.db, task.GroupID, actor.UserID)
	return task, group, err
}

func (s *TaskService) checkAssignee(ctx context.Context, groupID, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: assignee is not a group member", ErrInvalidInput)
	}
	return nil
}
