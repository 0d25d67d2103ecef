package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/lib/pq"
)

const threadColumns = "id, text, author, community, parent_id, children, created_at"

// foreign_key_violation
const pgForeignKeyViolation = "23503"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (*domain.Thread, error) {
	var (
		t         domain.Thread
		community uuid.NullUUID
		parent    uuid.NullUUID
		children  pq.StringArray
	)
	if err := row.Scan(&t.Id, &t.Text, &t.AuthorId, &community, &parent, &children, &t.CreatedAt); err != nil {
		return nil, err
	}
	if community.Valid {
		t.Community = &community.UUID
	}
	if parent.Valid {
		t.ParentId = &parent.UUID
	}
	ids, err := parseIds(children)
	if err != nil {
		return nil, err
	}
	t.ChildIds = ids
	return &t, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}

func insertThread(ctx context.Context, tx *sql.Tx, text domain.ThreadText, author domain.UserId, parent *domain.ThreadId) (*domain.Thread, error) {
	var parentArg uuid.NullUUID
	if parent != nil {
		parentArg = uuid.NullUUID{UUID: *parent, Valid: true}
	}

	row := tx.QueryRowContext(ctx, `
        INSERT INTO threads (id, text, author, community, parent_id)
        VALUES ($1, $2, $3, NULL, $4)
        RETURNING `+threadColumns,
		uuid.New(), text, author, parentArg,
	)
	thread, err := scanThread(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, internal_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert thread: %w", err)
	}
	return thread, nil
}

// CreateThread inserts a top-level thread and appends its id to the author's thread list in one transaction.
// The community reference is never stored.
func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	thread, err := insertThread(ctx, tx, data.Text, data.Author, nil)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET thread_ids = array_append(thread_ids, $1::uuid) WHERE id = $2",
		thread.Id, data.Author,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	} else if n == 0 {
		return nil, internal_errors.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return thread, nil
}

// CreateComment inserts a reply and appends it to the parent's children.
// The parent row stays locked until commit so concurrent replies keep every append.
func (s *Storage) CreateComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var parentId domain.ThreadId
	err = tx.QueryRowContext(ctx, "SELECT id FROM threads WHERE id = $1 FOR UPDATE", data.ThreadId).Scan(&parentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to lock parent thread: %w", err)
	}

	comment, err := insertThread(ctx, tx, data.Text, data.Author, &parentId)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE threads SET children = array_append(children, $1::uuid) WHERE id = $2",
		comment.Id, parentId,
	); err != nil {
		return nil, fmt.Errorf("failed to update parent thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return comment, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+threadColumns+" FROM threads WHERE id = $1", id)
	thread, err := scanThread(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return thread, nil
}

// GetThreadsByIds returns the threads in the order of ids. Unknown ids are skipped.
func (s *Storage) GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]*domain.Thread, error) {
	if len(ids) == 0 {
		return []*domain.Thread{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+threadColumns+" FROM threads WHERE id = ANY($1::uuid[])",
		idsArray(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	byId := make(map[domain.ThreadId]*domain.Thread, len(ids))
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		byId[thread.Id] = thread
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threads: %w", err)
	}

	threads := make([]*domain.Thread, 0, len(byId))
	for _, id := range ids {
		if thread, ok := byId[id]; ok {
			threads = append(threads, thread)
		}
	}
	return threads, nil
}

// GetTopLevelThreads returns threads without a parent, newest first.
func (s *Storage) GetTopLevelThreads(ctx context.Context, offset, limit int) ([]*domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE parent_id IS NULL
        ORDER BY created_at DESC, id DESC
        OFFSET $1 LIMIT $2
    `, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top-level threads: %w", err)
	}
	defer rows.Close()

	threads := make([]*domain.Thread, 0, limit)
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threads: %w", err)
	}
	return threads, nil
}

func (s *Storage) CountTopLevelThreads(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM threads WHERE parent_id IS NULL").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count threads: %w", err)
	}
	return count, nil
}
