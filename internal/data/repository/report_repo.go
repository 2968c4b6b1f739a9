package repository

import (
	"context"
	"errors"
	"fmt"

	"civic-report/internal/data/entity"
	"civic-report/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	FindAll(ctx context.Context) ([]*entity.Report, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entity.Report, error)
	Update(ctx context.Context, report *entity.Report) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus sets the status in one statement, only when the actor owns
	// the report or is an admin. It returns nil when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReportStatus, actorID uuid.UUID, isAdmin bool) (*entity.Report, error)

	// Vote records a user's vote and adjusts the counters. It returns nil when
	// the report does not exist.
	Vote(ctx context.Context, reportID, userID uuid.UUID, direction entity.VoteDirection) (*entity.Report, error)
}

const reportSelect = `
		SELECT r.id, r.title, r.description, r.category, r.address, r.image,
		       r.author_id, r.status, r.upvotes, r.downvotes, r.created_at,
		       r.updated_at, u.name
		FROM reports r
		LEFT JOIN users u ON u.id = r.author_id
`

type reportRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReportRepository(db database.PgxIface, log *zap.Logger) ReportRepository {
	return &reportRepository{
		db:  db,
		log: log.With(zap.String("repository", "report")),
	}
}

func scanReport(row pgx.Row) (*entity.Report, error) {
	var report entity.Report
	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.Category,
		&report.Address,
		&report.Image,
		&report.AuthorID,
		&report.Status,
		&report.Upvotes,
		&report.Downvotes,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	query := `
		INSERT INTO reports (id, title, description, category, address, image,
		                     author_id, status, upvotes, downvotes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		report.Category,
		report.Address,
		report.Image,
		report.AuthorID,
		report.Status,
		report.Upvotes,
		report.Downvotes,
		report.CreatedAt,
		report.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create report",
			zap.Error(err),
			zap.String("report_id", report.ID.String()),
		)
		return fmt.Errorf("create report %s: %w", report.ID.String(), err)
	}

	return nil
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	query := reportSelect + ` WHERE r.id = $1`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find report by ID",
			zap.Error(err),
			zap.String("report_id", id.String()),
		)
		return nil, fmt.Errorf("find report by ID %s: %w", id.String(), err)
	}

	return report, nil
}

func (r *reportRepository) FindAll(ctx context.Context) ([]*entity.Report, error) {
	query := reportSelect + ` ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all reports", zap.Error(err))
		return nil, fmt.Errorf("find all reports: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *reportRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entity.Report, error) {
	query := reportSelect + ` WHERE r.author_id = $1 ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		r.log.Error("Failed to find reports by author",
			zap.Error(err),
			zap.String("author_id", authorID.String()),
		)
		return nil, fmt.Errorf("find reports by author %s: %w", authorID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *reportRepository) collect(rows pgx.Rows) ([]*entity.Report, error) {
	reports := make([]*entity.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			r.log.Error("Failed to scan report row", zap.Error(err))
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return reports, nil
}

// Update writes the editable fields; status only changes through UpdateStatus
func (r *reportRepository) Update(ctx context.Context, report *entity.Report) error {
	query := `
		UPDATE reports
		SET title = $2, description = $3, category = $4, address = $5,
		    updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		report.Category,
		report.Address,
		report.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update report",
			zap.Error(err),
			zap.String("report_id", report.ID.String()),
		)
		return fmt.Errorf("update report %s: %w", report.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update report %s: %w", report.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reports WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete report",
			zap.Error(err),
			zap.String("report_id", id.String()),
		)
		return fmt.Errorf("delete report %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete report %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *reportRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status entity.ReportStatus,
	actorID uuid.UUID,
	isAdmin bool,
) (*entity.Report, error) {
	query := `
		WITH updated AS (
			UPDATE reports
			SET status = $2, updated_at = NOW()
			WHERE id = $1 AND (author_id = $3 OR $4::boolean)
			RETURNING *
		)
		SELECT r.id, r.title, r.description, r.category, r.address, r.image,
		       r.author_id, r.status, r.upvotes, r.downvotes, r.created_at,
		       r.updated_at, u.name
		FROM updated r
		LEFT JOIN users u ON u.id = r.author_id
	`

	report, err := scanReport(r.db.QueryRow(ctx, query, id, status, actorID, isAdmin))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update report status",
			zap.Error(err),
			zap.String("report_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update report status %s: %w", id.String(), err)
	}

	return report, nil
}

func (r *reportRepository) Vote(
	ctx context.Context,
	reportID, userID uuid.UUID,
	direction entity.VoteDirection,
) (*entity.Report, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the report row so concurrent votes serialize on it
	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM reports WHERE id = $1 FOR UPDATE`, reportID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock report %s: %w", reportID.String(), err)
	}

	var previous entity.VoteDirection
	err = tx.QueryRow(ctx,
		`SELECT direction FROM report_votes WHERE report_id = $1 AND user_id = $2`,
		reportID, userID,
	).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find vote: %w", err)
	}

	upDelta, downDelta := voteDeltas(previous, direction)

	switch {
	case previous == "":
		_, err = tx.Exec(ctx,
			`INSERT INTO report_votes (report_id, user_id, direction, created_at) VALUES ($1, $2, $3, NOW())`,
			reportID, userID, direction)
	case previous == direction:
		_, err = tx.Exec(ctx,
			`DELETE FROM report_votes WHERE report_id = $1 AND user_id = $2`,
			reportID, userID)
	default:
		_, err = tx.Exec(ctx,
			`UPDATE report_votes SET direction = $3 WHERE report_id = $1 AND user_id = $2`,
			reportID, userID, direction)
	}
	if err != nil {
		return nil, fmt.Errorf("write vote: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE reports
		SET upvotes = GREATEST(upvotes + $2, 0),
		    downvotes = GREATEST(downvotes + $3, 0),
		    updated_at = NOW()
		WHERE id = $1
	`, reportID, upDelta, downDelta)
	if err != nil {
		return nil, fmt.Errorf("update vote counters: %w", err)
	}

	report, err := scanReport(tx.QueryRow(ctx, reportSelect+` WHERE r.id = $1`, reportID))
	if err != nil {
		return nil, fmt.Errorf("reload report %s: %w", reportID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit vote",
			zap.Error(err),
			zap.String("report_id", reportID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("commit vote: %w", err)
	}

	return report, nil
}

// voteDeltas computes counter changes: a new vote adds one, repeating the same
// vote withdraws it, and switching moves it to the other counter.
func voteDeltas(previous, next entity.VoteDirection) (up, down int) {
	delta := func(d entity.VoteDirection, n int) {
		if d == entity.VoteUp {
			up += n
		} else {
			down += n
		}
	}

	switch previous {
	case "":
		delta(next, 1)
	case next:
		delta(next, -1)
	default:
		delta(previous, -1)
		delta(next, 1)
	}
	return up, down
}
