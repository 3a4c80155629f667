package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-router/core/database"
	"booking-router/core/logger"
	"booking-router/core/utils"
	"booking-router/modules/calendar/entity"

	"github.com/jmoiron/sqlx"
)

type CalendarRepositoryInterface interface {
	// Calendars
	SaveSnapshot(ctx context.Context, snapshot *entity.CalendarSnapshot) (*entity.Calendar, error)
	GetCalendar(ctx context.Context, calendarID string) (*entity.Calendar, error)
	ListActiveCalendars(ctx context.Context) ([]entity.Calendar, error)
	ListCandidatesByDuration(ctx context.Context, durationSeconds int64) ([]entity.Candidate, error)
	ListOpenHours(ctx context.Context, calendarIDs []string) ([]entity.OpenHour, error)
	ListTeamMembers(ctx context.Context, calendarIDs []string) ([]entity.TeamMember, error)

	// Booked slots
	ListBookedSlots(ctx context.Context, calendarIDs []string) ([]entity.BookedSlot, error)
	UpsertBookedSlot(ctx context.Context, slot *entity.BookedSlot) error
	UpsertBookedSlots(ctx context.Context, slots []entity.BookedSlot) error
	DeleteBookedSlot(ctx context.Context, eventID string) (int64, error)

	// Slot cache
	InsertSlotCache(ctx context.Context, entries []entity.SlotCacheEntry) (int64, error)
	FindSlotCacheHits(ctx context.Context, calendarIDs []string, start time.Time) ([]string, error)
	DeleteSlotCacheByDate(ctx context.Context, date time.Time) (int64, error)
}

type CalendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) *CalendarRepository {
	return &CalendarRepository{db: db}
}

var _ CalendarRepositoryInterface = (*CalendarRepository)(nil)

const calendarColumns = `id, calendar_id, location_id, name, slot_duration, slot_interval, pre_buffer,
	post_buffer, is_active, group_id, slug, created_at, updated_at`

const bookedSlotColumns = `id, event_id, calendar_id, location_id, assigned_user_id, start_time, end_time,
	status, contact_id, created_at, updated_at`

// SaveSnapshot upserts the calendar by its provider id and replaces its open
// hours and team members, all in one transaction.
func (r *CalendarRepository) SaveSnapshot(ctx context.Context, snapshot *entity.CalendarSnapshot) (*entity.Calendar, error) {
	cal := snapshot.Calendar
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO calendars (calendar_id, location_id, name, slot_duration, slot_interval,
				pre_buffer, post_buffer, is_active, group_id, slug)
			VALUES (:calendar_id, :location_id, :name, :slot_duration, :slot_interval,
				:pre_buffer, :post_buffer, :is_active, :group_id, :slug)
			ON CONFLICT (calendar_id) DO UPDATE SET
				location_id = EXCLUDED.location_id,
				name = EXCLUDED.name,
				slot_duration = EXCLUDED.slot_duration,
				slot_interval = EXCLUDED.slot_interval,
				pre_buffer = EXCLUDED.pre_buffer,
				post_buffer = EXCLUDED.post_buffer,
				is_active = EXCLUDED.is_active,
				group_id = EXCLUDED.group_id,
				slug = EXCLUDED.slug,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		rows, err := sqlx.NamedQueryContext(ctx, tx, query, &cal)
		if err != nil {
			return err
		}
		if rows.Next() {
			if err := rows.Scan(&cal.ID, &cal.CreatedAt, &cal.UpdatedAt); err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_open_hours WHERE calendar_id = $1`, cal.CalendarID); err != nil {
			return err
		}
		for _, oh := range snapshot.OpenHours {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_open_hours (calendar_id, day_of_week, open_hour, open_minute, close_hour, close_minute)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				cal.CalendarID, oh.DayOfWeek, oh.OpenHour, oh.OpenMinute, oh.CloseHour, oh.CloseMinute)
			if err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_team_members WHERE calendar_id = $1`, cal.CalendarID); err != nil {
			return err
		}
		for _, m := range snapshot.TeamMembers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_team_members (calendar_id, user_id, priority, is_primary)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (calendar_id, user_id) DO UPDATE SET priority = EXCLUDED.priority, is_primary = EXCLUDED.is_primary`,
				cal.CalendarID, m.UserID, m.Priority, m.IsPrimary)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("CalendarRepository:SaveSnapshot:Error", "error", err, "calendar_id", cal.CalendarID)
		return nil, err
	}
	return &cal, nil
}

func (r *CalendarRepository) GetCalendar(ctx context.Context, calendarID string) (*entity.Calendar, error) {
	var cal entity.Calendar
	err := r.db.GetContext(ctx, &cal, `SELECT `+calendarColumns+` FROM calendars WHERE calendar_id = $1`, calendarID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("CalendarRepository:GetCalendar:Error", "error", err, "calendar_id", calendarID)
		return nil, err
	}
	return &cal, nil
}

func (r *CalendarRepository) ListActiveCalendars(ctx context.Context) ([]entity.Calendar, error) {
	var cals []entity.Calendar
	err := r.db.SelectContext(ctx, &cals, `SELECT `+calendarColumns+` FROM calendars WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		logger.Error("CalendarRepository:ListActiveCalendars:Error", "error", err)
		return nil, err
	}
	return cals, nil
}

// ListCandidatesByDuration returns active calendars whose slot length equals
// the requested window, each with its count of mirrored bookings.
func (r *CalendarRepository) ListCandidatesByDuration(ctx context.Context, durationSeconds int64) ([]entity.Candidate, error) {
	query := `
		SELECT c.id, c.calendar_id, c.location_id, c.name, c.slot_duration, c.slot_interval, c.pre_buffer,
			c.post_buffer, c.is_active, c.group_id, c.slug, c.created_at, c.updated_at,
			COUNT(b.id) AS booked_slots
		FROM calendars c
		LEFT JOIN calendar_booked_slots b ON b.calendar_id = c.calendar_id
		WHERE c.slot_duration = $1 AND c.is_active = TRUE
		GROUP BY c.id
		ORDER BY c.created_at
	`
	var candidates []entity.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, durationSeconds); err != nil {
		logger.Error("CalendarRepository:ListCandidatesByDuration:Error", "error", err, "duration", durationSeconds)
		return nil, err
	}
	return candidates, nil
}

func (r *CalendarRepository) ListOpenHours(ctx context.Context, calendarIDs []string) ([]entity.OpenHour, error) {
	var hours []entity.OpenHour
	err := r.selectIn(ctx, &hours, `
		SELECT calendar_id, day_of_week, open_hour, open_minute, close_hour, close_minute
		FROM calendar_open_hours WHERE calendar_id IN (?)
		ORDER BY calendar_id, day_of_week, open_hour, open_minute`, calendarIDs)
	if err != nil {
		logger.Error("CalendarRepository:ListOpenHours:Error", "error", err)
		return nil, err
	}
	return hours, nil
}

func (r *CalendarRepository) ListTeamMembers(ctx context.Context, calendarIDs []string) ([]entity.TeamMember, error) {
	var members []entity.TeamMember
	err := r.selectIn(ctx, &members, `
		SELECT calendar_id, user_id, priority, is_primary
		FROM calendar_team_members WHERE calendar_id IN (?)
		ORDER BY calendar_id, is_primary DESC, priority DESC`, calendarIDs)
	if err != nil {
		logger.Error("CalendarRepository:ListTeamMembers:Error", "error", err)
		return nil, err
	}
	return members, nil
}

func (r *CalendarRepository) ListBookedSlots(ctx context.Context, calendarIDs []string) ([]entity.BookedSlot, error) {
	var slots []entity.BookedSlot
	err := r.selectIn(ctx, &slots, `SELECT `+bookedSlotColumns+` FROM calendar_booked_slots
		WHERE calendar_id IN (?) ORDER BY start_time`, calendarIDs)
	if err != nil {
		logger.Error("CalendarRepository:ListBookedSlots:Error", "error", err)
		return nil, err
	}
	return slots, nil
}

// selectIn expands the single IN (?) placeholder in query. An empty id list
// yields no rows without touching the database.
func (r *CalendarRepository) selectIn(ctx context.Context, dest any, query string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.SQLx().Rebind(query), args...)
}

const upsertBookedSlotQuery = `
	INSERT INTO calendar_booked_slots (event_id, calendar_id, location_id, assigned_user_id,
		start_time, end_time, status, contact_id)
	VALUES (:event_id, :calendar_id, :location_id, :assigned_user_id,
		:start_time, :end_time, :status, :contact_id)
	ON CONFLICT (event_id) DO UPDATE SET
		calendar_id = EXCLUDED.calendar_id,
		location_id = EXCLUDED.location_id,
		assigned_user_id = EXCLUDED.assigned_user_id,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		status = EXCLUDED.status,
		contact_id = EXCLUDED.contact_id,
		updated_at = NOW()
`

func (r *CalendarRepository) UpsertBookedSlot(ctx context.Context, slot *entity.BookedSlot) error {
	if _, err := r.db.NamedExecContext(ctx, upsertBookedSlotQuery, slot); err != nil {
		logger.Error("CalendarRepository:UpsertBookedSlot:Error", "error", err, "event_id", slot.EventID)
		return err
	}
	return nil
}

func (r *CalendarRepository) UpsertBookedSlots(ctx context.Context, slots []entity.BookedSlot) error {
	if len(slots) == 0 {
		return nil
	}
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range slots {
			if _, err := tx.NamedExecContext(ctx, upsertBookedSlotQuery, &slots[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("CalendarRepository:UpsertBookedSlots:Error", "error", err, "count", len(slots))
	}
	return err
}

func (r *CalendarRepository) DeleteBookedSlot(ctx context.Context, eventID string) (int64, error) {
	res, err := r.db.SQLx().ExecContext(ctx, `DELETE FROM calendar_booked_slots WHERE event_id = $1`, eventID)
	if err != nil {
		logger.Error("CalendarRepository:DeleteBookedSlot:Error", "error", err, "event_id", eventID)
		return 0, err
	}
	return res.RowsAffected()
}

// InsertSlotCache stores prefetched start times; rows already present are kept.
func (r *CalendarRepository) InsertSlotCache(ctx context.Context, entries []entity.SlotCacheEntry) (int64, error) {
	var inserted int64
	if len(entries) == 0 {
		return 0, nil
	}
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entries {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_slots (calendar_id, location_id, slot_datetime_utc, timezone, date, scheduling_url)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (calendar_id, slot_datetime_utc) DO NOTHING`,
				e.CalendarID, e.LocationID, e.SlotDatetimeUTC.UTC(), e.Timezone,
				e.Date.Format(utils.DateLayout), e.SchedulingURL)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			inserted += n
		}
		return nil
	})
	if err != nil {
		logger.Error("CalendarRepository:InsertSlotCache:Error", "error", err, "count", len(entries))
		return 0, err
	}
	return inserted, nil
}

// FindSlotCacheHits returns the calendars among calendarIDs that have a
// cached slot starting exactly at start.
func (r *CalendarRepository) FindSlotCacheHits(ctx context.Context, calendarIDs []string, start time.Time) ([]string, error) {
	if len(calendarIDs) == 0 {
		return []string{}, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT calendar_id FROM calendar_slots
		WHERE slot_datetime_utc = ? AND calendar_id IN (?)`, start.UTC(), calendarIDs)
	if err != nil {
		return nil, err
	}
	hits := []string{}
	if err := r.db.SelectContext(ctx, &hits, r.db.SQLx().Rebind(query), args...); err != nil {
		logger.Error("CalendarRepository:FindSlotCacheHits:Error", "error", err)
		return nil, err
	}
	return hits, nil
}

func (r *CalendarRepository) DeleteSlotCacheByDate(ctx context.Context, date time.Time) (int64, error) {
	res, err := r.db.SQLx().ExecContext(ctx, `DELETE FROM calendar_slots WHERE date = $1`, date.Format(utils.DateLayout))
	if err != nil {
		logger.Error("CalendarRepository:DeleteSlotCacheByDate:Error", "error", err)
		return 0, err
	}
	return res.RowsAffected()
}
