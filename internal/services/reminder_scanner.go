package services

import (
	"context"
	"fmt"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/lock"
	"groupsync/internal/logger"
	"groupsync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReminderWindow is how far ahead appointments and polls are picked up
const ReminderWindow = 24 * time.Hour

const scanLockKey = "reminder-scan"

// ScanResult summarizes one reminder scan
type ScanResult struct {
	AppointmentReminders int      `json:"appointmentReminders"`
	TaskReminders        int      `json:"taskReminders"`
	PollReminders        int      `json:"pollReminders"`
	Errors               []string `json:"errors"`
	Skipped              bool     `json:"skipped,omitempty"`
}

func (r *ScanResult) fail(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Named("reminders").Warn(msg)
	r.Errors = append(r.Errors, msg)
}

// ReminderScanner finds soon-due appointments, tasks and polls and sends
// each (item, user) pair at most one reminder.
type ReminderScanner struct {
	db      *gorm.DB
	mailer  *email.Mailer
	loc     *time.Location
	locker  lock.Locker
	lockTTL time.Duration
	now     func() time.Time
}

func NewReminderScanner(db *gorm.DB, mailer *email.Mailer, loc *time.Location) *ReminderScanner {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderScanner{
		db:      db,
		mailer:  mailer,
		loc:     loc,
		locker:  lock.Noop{},
		lockTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// WithLocker makes overlapping scans in different processes skip instead of running twice
func (s *ReminderScanner) WithLocker(l lock.Locker, ttl time.Duration) *ReminderScanner {
	s.locker = l
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithClock replaces the wall clock, for tests
func (s *ReminderScanner) WithClock(now func() time.Time) *ReminderScanner {
	s.now = now
	return s
}

// Run performs one full scan. It never aborts early: every failure is
// recorded in the result and the remaining items are still processed.
func (s *ReminderScanner) Run(ctx context.Context) ScanResult {
	log := logger.Named("reminders")
	result := ScanResult{Errors: []string{}}

	release, ok, err := s.locker.TryLock(ctx, scanLockKey, s.lockTTL)
	switch {
	case err != nil:
		// The ledger still prevents duplicates, so scan without the lock
		result.fail("acquire scan lock: %v", err)
	case !ok:
		log.Info("Reminder scan already running elsewhere, skipping")
		result.Skipped = true
		return result
	default:
		defer release()
	}

	now := s.now().UTC()
	s.appointments(ctx, now, &result)
	s.tasks(ctx, now, &result)
	s.polls(ctx, now, &result)

	log.Infof("Reminder scan done: %d appointment, %d task, %d poll reminders, %d errors",
		result.AppointmentReminders, result.TaskReminders, result.PollReminders, len(result.Errors))
	return result
}

func (s *ReminderScanner) appointments(ctx context.Context, now time.Time, result *ScanResult) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", now, now.Add(ReminderWindow)).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		result.fail("query appointments: %v", err)
		return
	}

	for _, a := range appointments {
		recipients, err := s.groupRecipients(ctx, a.GroupID, nil)
		if err != nil {
			result.fail("appointment %s: %v", a.ID, err)
			continue
		}
		for _, p := range recipients {
			data := email.Data{
				To:                  emailOf(p),
				RecipientName:       displayName(p),
				AppointmentTitle:    a.Title,
				AppointmentDate:     email.FormatDate(a.StartTime, s.loc),
				AppointmentTime:     email.FormatTime(a.StartTime, s.loc),
				AppointmentLocation: deref(a.Location),
			}
			sent, err := s.remind(ctx, models.ReminderAppointment, a.ID, p.ID, email.TypeAppointmentReminder, data)
			if err != nil {
				result.fail("appointment %s to %s: %v", a.ID, p.ID, err)
				continue
			}
			if sent {
				result.AppointmentReminders++
			}
		}
	}
}

// dueDateWindow returns the half-open [today, today+2) range of UTC calendar days as
// date literals, so the comparison never depends on the session time zone
func dueDateWindow(now time.Time) (string, string) {
	today := now.UTC()
	return today.Format("2006-01-02"), today.AddDate(0, 0, 2).Format("2006-01-02")
}

// tasks selects by calendar day in UTC (today and tomorrow) rather than by a rolling window
func (s *ReminderScanner) tasks(ctx context.Context, now time.Time, result *ScanResult) {
	from, until := dueDateWindow(now)

	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ? AND status <> ? AND assigned_to IS NOT NULL",
			from, until, models.TaskCompleted).
		Order("due_date").
		Find(&tasks).Error
	if err != nil {
		result.fail("query tasks: %v", err)
		return
	}

	for _, t := range tasks {
		profiles, err := profilesByID(ctx, s.db, []string{*t.AssignedTo})
		if err != nil {
			result.fail("task %s: %v", t.ID, err)
			continue
		}
		p, ok := profiles[*t.AssignedTo]
		if !ok || emailOf(p) == "" {
			continue
		}

		assigner := actorName(ctx, s.db, t.CreatedBy)
		if assigner == "" {
			assigner = "Ein Gruppenmitglied"
		}
		data := email.Data{
			To:              emailOf(p),
			RecipientName:   displayName(p),
			TaskTitle:       t.Title,
			TaskDescription: deref(t.Description),
			DueDate:         email.FormatDate(*t.DueDate, time.UTC),
			AssignerName:    assigner,
		}
		sent, err := s.remind(ctx, models.ReminderTask, t.ID, p.ID, email.TypeTaskDueReminder, data)
		if err != nil {
			result.fail("task %s to %s: %v", t.ID, p.ID, err)
			continue
		}
		if sent {
			result.TaskReminders++
		}
	}
}

func (s *ReminderScanner) polls(ctx context.Context, now time.Time, result *ScanResult) {
	var polls []models.Poll
	err := s.db.WithContext(ctx).
		Where("ends_at >= ? AND ends_at <= ?", now, now.Add(ReminderWindow)).
		Order("ends_at").
		Find(&polls).Error
	if err != nil {
		result.fail("query polls: %v", err)
		return
	}

	for _, poll := range polls {
		var voters []string
		if err := s.db.WithContext(ctx).Model(&models.PollVote{}).
			Where("poll_id = ?", poll.ID).
			Distinct().
			Pluck("user_id", &voters).Error; err != nil {
			result.fail("poll %s voters: %v", poll.ID, err)
			continue
		}

		recipients, err := s.groupRecipients(ctx, poll.GroupID, voters)
		if err != nil {
			result.fail("poll %s: %v", poll.ID, err)
			continue
		}
		for _, p := range recipients {
			data := email.Data{
				To:            emailOf(p),
				RecipientName: displayName(p),
				PollTitle:     poll.Title,
				EndsAt:        email.FormatDateTime(*poll.EndsAt, s.loc),
			}
			sent, err := s.remind(ctx, models.ReminderPoll, poll.ID, p.ID, email.TypePollReminder, data)
			if err != nil {
				result.fail("poll %s to %s: %v", poll.ID, p.ID, err)
				continue
			}
			if sent {
				result.PollReminders++
			}
		}
	}
}

// groupRecipients returns the profiles with an email address of every member
// of groupID who is not in skip
func (s *ReminderScanner) groupRecipients(ctx context.Context, groupID string, skip []string) ([]models.Profile, error) {
	ids, err := memberIDs(ctx, s.db, groupID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	excluded := make(map[string]bool, len(skip))
	for _, id := range skip {
		excluded[id] = true
	}
	var wanted []string
	for _, id := range ids {
		if !excluded[id] {
			wanted = append(wanted, id)
		}
	}

	profiles, err := profilesByID(ctx, s.db, wanted)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	var out []models.Profile
	for _, id := range wanted {
		if p, ok := profiles[id]; ok && emailOf(p) != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// remind claims the ledger key, sends, and gives the key back if the send fails.
// sent is false without an error when the key was already claimed.
func (s *ReminderScanner) remind(ctx context.Context, kind models.ReminderType, refID, userID string, t email.Type, data email.Data) (bool, error) {
	claimed, err := s.claim(ctx, kind, refID, userID)
	if err != nil {
		return false, fmt.Errorf("claim ledger: %w", err)
	}
	if !claimed {
		return false, nil
	}

	if _, err := s.mailer.Send(ctx, t, data); err != nil {
		if relErr := s.unclaim(kind, refID, userID); relErr != nil {
			return false, fmt.Errorf("%v (release ledger: %v)", err, relErr)
		}
		return false, err
	}
	return true, nil
}

func (s *ReminderScanner) claim(ctx context.Context, kind models.ReminderType, refID, userID string) (bool, error) {
	row := models.EmailReminderSent{
		ReminderType: kind,
		ReferenceID:  refID,
		UserID:       userID,
		SentAt:       s.now().UTC(),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reminder_type"}, {Name: "reference_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// unclaim runs detached from the scan context so a cancelled scan still frees the key
func (s *ReminderScanner) unclaim(kind models.ReminderType, refID, userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.WithContext(ctx).
		Where("reminder_type = ? AND reference_id = ? AND user_id = ?", kind, refID, userID).
		Delete(&models.EmailReminderSent{}).Error
}
