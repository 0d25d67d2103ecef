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

func (s *Storage) CreateUser(ctx context.Context, data domain.UserCreationData) (*domain.User, error) {
	user := &domain.User{Id: uuid.New(), Name: data.Name, Image: data.Image, ThreadIds: []domain.ThreadId{}}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, image) VALUES ($1, $2, $3)",
		user.Id, user.Name, user.Image,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	var (
		user    domain.User
		threads pq.StringArray
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, image, thread_ids FROM users WHERE id = $1", id,
	).Scan(&user.Id, &user.Name, &user.Image, &threads)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.ThreadIds, err = parseIds(threads); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserSummaries projects users to {id, name, image}. Unknown ids are absent from the result.
func (s *Storage) GetUserSummaries(ctx context.Context, ids []domain.UserId) (map[domain.UserId]domain.UserSummary, error) {
	summaries := make(map[domain.UserId]domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, image FROM users WHERE id = ANY($1::uuid[])",
		idsArray(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.Id, &u.Name, &u.Image); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		summaries[u.Id] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return summaries, nil
}
