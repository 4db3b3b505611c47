package repository

import (
	"context"
	"time"

	"coachbook/internal/domain/reservation"
	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `
	id, coaching_id, instructor_id, student_id, start_time, end_time,
	status, attendance, external_event_id, meet_link, credit_id,
	idempotency_key, created_at, updated_at `

type reservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) usecase.ReservationRepository {
	return &reservationRepository{pool: pool}
}

func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	const query = `
		INSERT INTO reservations (
			id, coaching_id, instructor_id, student_id, start_time, end_time,
			status, attendance, external_event_id, meet_link, credit_id, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		res.ID(),
		res.CoachingID(),
		res.InstructorID(),
		res.StudentID(),
		res.Start(),
		res.End(),
		string(res.Status()),
		string(res.Attendance()),
		res.ExternalEventID(),
		res.MeetLink(),
		res.CreditID(),
		res.IdempotencyKey(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + `FROM reservations WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "reservation not found")
}

func (r *reservationRepository) FindConfirmedByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + `FROM reservations WHERE idempotency_key = $1 AND status = 'confirmed'`
	return r.scanOne(r.pool.QueryRow(ctx, query, key), "no confirmed reservation for key")
}

func (r *reservationRepository) ListConfirmedIntervals(ctx context.Context, coachingID, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	const query = `
		SELECT start_time, end_time
		FROM reservations
		WHERE coaching_id = $1 AND instructor_id = $2
		  AND status = 'confirmed'
		  AND start_time < $4 AND end_time > $3
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, coachingID, instructorID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list confirmed intervals", err)
	}
	defer rows.Close()

	var intervals []schedule.Interval
	for rows.Next() {
		var iv schedule.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan confirmed interval", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate confirmed intervals", err)
	}
	return intervals, nil
}

func (r *reservationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + `FROM reservations WHERE student_id = $1 ORDER BY start_time DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var list []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return list, nil
}

func (r *reservationRepository) MarkCancelled(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	const query = `
		UPDATE reservations
		SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status = 'confirmed'`

	tag, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to cancel reservation", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *reservationRepository) SetAttendance(ctx context.Context, id uuid.UUID, attendance reservation.Attendance, now time.Time) error {
	const query = `
		UPDATE reservations
		SET attendance = $2, updated_at = $3
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(attendance), now)
	if err != nil {
		return infra.WrapRepoErr("failed to set attendance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *reservationRepository) scanOne(row pgx.Row, notFoundMsg string) (*reservation.Reservation, error) {
	res, err := scanReservation(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return res, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, coachingID, instructorID, studentID, creditID uuid.UUID
		start, end, createdAt, updatedAt                  time.Time
		status, attendance                                string
		externalEventID, meetLink, idempotencyKey         string
	)
	err := row.Scan(
		&id, &coachingID, &instructorID, &studentID, &start, &end,
		&status, &attendance, &externalEventID, &meetLink, &creditID,
		&idempotencyKey, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reservation.Reconstruct(
		id, coachingID, instructorID, studentID,
		start, end,
		reservation.Status(status),
		reservation.Attendance(attendance),
		externalEventID, meetLink,
		creditID,
		idempotencyKey,
		createdAt, updatedAt,
	), nil
}
