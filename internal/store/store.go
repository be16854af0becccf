package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rota-backend/config"
	"rota-backend/internal/calendar"
	"rota-backend/internal/model"
	"rota-backend/internal/rota"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	SeedBranches(ctx context.Context, branches []config.BranchConfig) error
	GetBranch(ctx context.Context, code string) (model.Branch, error)

	RotaDay(ctx context.Context, branch string, date time.Time) (map[string][]rota.UserRef, error)
	AddDuty(ctx context.Context, branch string, date time.Time, hour int, userID int64) error
	RemoveDuty(ctx context.Context, branch string, date time.Time, hour int, userID int64) error
	BulkAdd(ctx context.Context, p BulkParams) (int, error)
	BulkRemove(ctx context.Context, p BulkParams) (int, error)

	UsersByBranch(ctx context.Context, branch string) ([]model.User, error)
	SaveUser(ctx context.Context, branch string, user model.User) (model.User, error)
	RemoveUser(ctx context.Context, branch string, userID int64) error
	Viewer(ctx context.Context, userID int64) ([]model.Branch, []string, error)

	UserDuties(ctx context.Context, branch string, userID int64, start, end time.Time) ([]DayDuties, error)
	CountDuties(ctx context.Context, branch string, userIDs []int64, intervals []calendar.Interval) ([]calendar.UserStats, error)

	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DutiesStartingAt(ctx context.Context, date time.Time, hour int) ([]model.Duty, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SeedBranches upserts the configured branches. Branch rows not present
// in the config are left alone so historical duties keep their reference.
func (s *gormStore) SeedBranches(ctx context.Context, branches []config.BranchConfig) error {
	if len(branches) == 0 {
		return nil
	}
	rows := make([]model.Branch, 0, len(branches))
	for _, b := range branches {
		rows = append(rows, model.Branch{
			Code:          b.Code,
			Name:          b.Name,
			MaxDuties:     b.MaxDuties,
			SecondaryCode: b.Secondary,
			DayStartHour:  b.DayStartHour,
			DayEndHour:    b.DayEndHour,
		})
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "max_duties", "secondary_code", "day_start_hour", "day_end_hour", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("batch upsert branches failed: %w", err)
	}
	return nil
}

func (s *gormStore) GetBranch(ctx context.Context, code string) (model.Branch, error) {
	var branch model.Branch
	err := s.db.WithContext(ctx).First(&branch, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Branch{}, ErrBranchNotFound
	}
	return branch, err
}

// RotaDay returns the full day's roster keyed by hour label. Hours with
// no occupants are absent from the map; callers render them as empty.
func (s *gormStore) RotaDay(ctx context.Context, branch string, date time.Time) (map[string][]rota.UserRef, error) {
	type occupantRow struct {
		Hour     int
		UserID   int64
		Nick     string
		Username string
		Color    int
	}
	var rows []occupantRow
	if err := s.db.WithContext(ctx).
		Model(&model.Duty{}).
		Select("duties.hour, duties.user_id, users.nick, users.username, users.color").
		Joins("JOIN users ON users.id = duties.user_id").
		Where("duties.branch_code = ? AND duties.date = ?", branch, calendar.DateOnly(date)).
		Order("duties.hour, duties.created_at, duties.id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load rota for %s/%s: %w", branch, date.Format("2006-01-02"), err)
	}

	day := make(map[string][]rota.UserRef)
	for _, r := range rows {
		label := rota.HourLabel(r.Hour)
		day[label] = append(day[label], rota.UserRef{
			ID:       r.UserID,
			Nick:     r.Nick,
			Username: r.Username,
			Color:    r.Color,
		})
	}
	return day, nil
}

// AddDuty assigns a user to a slot. The capacity check runs inside the
// transaction so concurrent claims cannot overbook the slot.
func (s *gormStore) AddDuty(ctx context.Context, branch string, date time.Time, hour int, userID int64) error {
	date = calendar.DateOnly(date)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Branch
		if err := tx.First(&b, "code = ?", branch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBranchNotFound
			}
			return err
		}

		var occupants int64
		if err := tx.Model(&model.Duty{}).
			Where("branch_code = ? AND date = ? AND hour = ?", branch, date, hour).
			Count(&occupants).Error; err != nil {
			return err
		}
		if occupants >= int64(b.MaxDuties) {
			return ErrSlotFull
		}

		var existing int64
		if err := tx.Model(&model.Duty{}).
			Where("branch_code = ? AND date = ? AND hour = ? AND user_id = ?", branch, date, hour, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyAssigned
		}

		duty := model.Duty{BranchCode: branch, Date: date, Hour: hour, UserID: userID}
		if err := tx.Create(&duty).Error; err != nil {
			return fmt.Errorf("failed to create duty: %w", err)
		}
		return nil
	})
}

func (s *gormStore) RemoveDuty(ctx context.Context, branch string, date time.Time, hour int, userID int64) error {
	res := s.db.WithContext(ctx).
		Where("branch_code = ? AND date = ? AND hour = ? AND user_id = ?", branch, calendar.DateOnly(date), hour, userID).
		Delete(&model.Duty{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotAssigned
	}
	return nil
}

// BulkAdd applies an assignment across a date range in one transaction.
// Slots at capacity are skipped, as are slots the user already holds and,
// when AllowOccupiedSlots is false, slots with any occupant at all. The
// returned count is the number of duties actually created.
func (s *gormStore) BulkAdd(ctx context.Context, p BulkParams) (int, error) {
	modified := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Branch
		if err := tx.First(&b, "code = ?", p.Branch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBranchNotFound
			}
			return err
		}

		for _, day := range matchingDays(p) {
			for _, hour := range p.Hours {
				var occupants int64
				if err := tx.Model(&model.Duty{}).
					Where("branch_code = ? AND date = ? AND hour = ?", p.Branch, day, hour).
					Count(&occupants).Error; err != nil {
					return err
				}
				if occupants >= int64(b.MaxDuties) {
					continue
				}
				if occupants > 0 && !p.AllowOccupiedSlots {
					continue
				}

				var existing int64
				if err := tx.Model(&model.Duty{}).
					Where("branch_code = ? AND date = ? AND hour = ? AND user_id = ?", p.Branch, day, hour, p.UserID).
					Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					continue
				}

				duty := model.Duty{BranchCode: p.Branch, Date: day, Hour: hour, UserID: p.UserID}
				if err := tx.Create(&duty).Error; err != nil {
					return fmt.Errorf("failed to create duty on %s hour %d: %w", day.Format("2006-01-02"), hour, err)
				}
				modified++
			}
		}
		return nil
	})
	return modified, err
}

// BulkRemove deletes the user's duties matching the range, weekday and
// hour filters and reports how many were removed.
func (s *gormStore) BulkRemove(ctx context.Context, p BulkParams) (int, error) {
	days := matchingDays(p)
	if len(days) == 0 || len(p.Hours) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("branch_code = ? AND user_id = ? AND date IN ? AND hour IN ?", p.Branch, p.UserID, days, p.Hours).
		Delete(&model.Duty{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// matchingDays expands the bulk range into the concrete dates hit by the
// weekday filter. An empty filter matches every day in the range.
func matchingDays(p BulkParams) []time.Time {
	wanted := make(map[int]bool, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		wanted[d] = true
	}

	var days []time.Time
	for d := calendar.DateOnly(p.Start); !d.After(calendar.DateOnly(p.End)); d = d.AddDate(0, 0, 1) {
		mondayBased := (int(d.Weekday()) + 6) % 7
		if len(wanted) == 0 || wanted[mondayBased] {
			days = append(days, d)
		}
	}
	return days
}

func (s *gormStore) UsersByBranch(ctx context.Context, branch string) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.branch_code = ?", branch).
		Order("users.nick, users.username").
		Find(&users).Error
	return users, err
}

// SaveUser upserts the user record and ensures a membership in the branch.
// A zero ID means a brand-new user created from the admin form; those get
// a generated id only after the messaging platform id is known, so the
// username must not collide.
func (s *gormStore) SaveUser(ctx context.Context, branch string, user model.User) (model.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Branch
		if err := tx.First(&b, "code = ?", branch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBranchNotFound
			}
			return err
		}

		if user.ID == 0 {
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
		} else {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"username", "nick", "color", "updated_at"}),
			}).Create(&user).Error; err != nil {
				return fmt.Errorf("failed to upsert user: %w", err)
			}
		}

		membership := model.Membership{UserID: user.ID, BranchCode: branch}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to ensure membership: %w", err)
		}
		return nil
	})
	return user, err
}

// RemoveUser drops the user's membership in the branch together with all
// their duties there. The user record itself survives for other branches.
func (s *gormStore) RemoveUser(ctx context.Context, branch string, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND branch_code = ?", userID, branch).Delete(&model.Membership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Where("user_id = ? AND branch_code = ?", userID, branch).Delete(&model.Duty{}).Error
	})
}

// Viewer resolves the branches the user belongs to and the subset they
// administer. An empty branch list means the user is unknown to the rota.
func (s *gormStore) Viewer(ctx context.Context, userID int64) ([]model.Branch, []string, error) {
	var memberships []model.Membership
	if err := s.db.WithContext(ctx).
		Preload("Branch").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, nil, err
	}
	if len(memberships) == 0 {
		return nil, nil, ErrUserNotFound
	}

	branches := make([]model.Branch, 0, len(memberships))
	var adminCodes []string
	for _, m := range memberships {
		branches = append(branches, m.Branch)
		if m.Admin {
			adminCodes = append(adminCodes, m.BranchCode)
		}
	}
	return branches, adminCodes, nil
}

// UserDuties lists the user's duty hours per date inside [start, end].
func (s *gormStore) UserDuties(ctx context.Context, branch string, userID int64, start, end time.Time) ([]DayDuties, error) {
	var duties []model.Duty
	if err := s.db.WithContext(ctx).
		Where("branch_code = ? AND user_id = ? AND date >= ? AND date <= ?",
			branch, userID, calendar.DateOnly(start), calendar.DateOnly(end)).
		Order("date, hour").
		Find(&duties).Error; err != nil {
		return nil, err
	}

	out := make([]DayDuties, 0)
	for _, d := range duties {
		if len(out) > 0 && out[len(out)-1].Date.Equal(d.Date) {
			out[len(out)-1].Hours = append(out[len(out)-1].Hours, d.Hour)
			continue
		}
		out = append(out, DayDuties{Date: d.Date, Hours: []int{d.Hour}})
	}
	return out, nil
}

// CountDuties aggregates duty counts per user per requested interval.
// Every requested user gets a row with an entry for every requested
// interval; absent activity shows as a true zero from the authoritative
// store, unlike a missing cell in a partially fetched grid.
func (s *gormStore) CountDuties(ctx context.Context, branch string, userIDs []int64, intervals []calendar.Interval) ([]calendar.UserStats, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", userIDs).Order("nick, username").Find(&users).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		UserID int64
		Total  int
	}

	perUser := make(map[int64][]calendar.StatEntry, len(users))
	for _, iv := range intervals {
		var rows []countRow
		if err := s.db.WithContext(ctx).
			Model(&model.Duty{}).
			Select("user_id, COUNT(*) as total").
			Where("branch_code = ? AND user_id IN ? AND date >= ? AND date <= ?", branch, userIDs, iv.Start, iv.End).
			Group("user_id").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to count duties for %s: %w", iv.Key(), err)
		}

		counts := make(map[int64]int, len(rows))
		for _, r := range rows {
			counts[r.UserID] = r.Total
		}
		for _, u := range users {
			perUser[u.ID] = append(perUser[u.ID], calendar.StatEntry{DateRange: iv, Count: counts[u.ID]})
		}
	}

	stats := make([]calendar.UserStats, 0, len(users))
	for _, u := range users {
		ref := rota.UserRef{ID: u.ID, Nick: u.Nick, Username: u.Username}
		stats = append(stats, calendar.UserStats{User: ref.DisplayName(), Entries: perUser[u.ID]})
	}
	return stats, nil
}

func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(&sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

// DutiesStartingAt returns every duty across all branches for one
// date/hour slot, feeding the reminder scan.
func (s *gormStore) DutiesStartingAt(ctx context.Context, date time.Time, hour int) ([]model.Duty, error) {
	var duties []model.Duty
	err := s.db.WithContext(ctx).
		Where("date = ? AND hour = ?", calendar.DateOnly(date), hour).
		Find(&duties).Error
	return duties, err
}
