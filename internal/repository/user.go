package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoroot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const usersTable = "eco_users"

var userColumns = []string{
	"id",
	"name",
	"role",
	"eco_points",
	"score",
	"certificates",
	"claimed_rewards",
	"completed_challenges",
	"created_at",
	"updated_at",
}

type User struct {
	ID                  string    `db:"id"`
	Name                string    `db:"name"`
	Role                string    `db:"role"`
	EcoPoints           int       `db:"eco_points"`
	Score               int       `db:"score"`
	Certificates        []byte    `db:"certificates"`
	ClaimedRewards      []byte    `db:"claimed_rewards"`
	CompletedChallenges []byte    `db:"completed_challenges"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (u *User) toModel() (*model.User, error) {
	out := &model.User{
		ID:        u.ID,
		Name:      u.Name,
		Role:      model.Role(u.Role),
		EcoPoints: u.EcoPoints,
		Score:     u.Score,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if err := unmarshalColumn(u.Certificates, &out.Certificates); err != nil {
		return nil, fmt.Errorf("failed to decode certificates: %w", err)
	}
	if err := unmarshalColumn(u.ClaimedRewards, &out.ClaimedRewards); err != nil {
		return nil, fmt.Errorf("failed to decode claimed rewards: %w", err)
	}
	if err := unmarshalColumn(u.CompletedChallenges, &out.CompletedChallenges); err != nil {
		return nil, fmt.Errorf("failed to decode completed challenges: %w", err)
	}

	return out, nil
}

func unmarshalColumn(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func marshalColumn(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

func userValues(user *model.User) (map[string]interface{}, error) {
	certificates, err := marshalColumn(user.Certificates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode certificates: %w", err)
	}
	rewards, err := marshalColumn(user.ClaimedRewards)
	if err != nil {
		return nil, fmt.Errorf("failed to encode claimed rewards: %w", err)
	}
	completed, err := marshalColumn(user.CompletedChallenges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completed challenges: %w", err)
	}

	return map[string]interface{}{
		"name":                 user.Name,
		"role":                 string(user.Role),
		"eco_points":           user.EcoPoints,
		"score":                user.Score,
		"certificates":         certificates,
		"claimed_rewards":      rewards,
		"completed_challenges": completed,
		"updated_at":           user.UpdatedAt,
	}, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query, args, err := squirrel.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user select query: %w", err)
	}

	var row User
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toModel()
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	values, err := userValues(user)
	if err != nil {
		return err
	}
	values["id"] = user.ID
	values["created_at"] = user.CreatedAt

	query, args, err := squirrel.
		Insert(usersTable).
		SetMap(values).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}

	return nil
}

// UpdateUser locks the account row for the duration of fn.
func (r *Repository) UpdateUser(ctx context.Context, id string, fn func(user *model.User) error) (*model.User, error) {
	var updated *model.User

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Select(userColumns...).
			From(usersTable).
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user select query: %w", err)
		}

		var row User
		err = tx.GetContext(ctx, &row, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		user, err := row.toModel()
		if err != nil {
			return err
		}

		if err := fn(user); err != nil {
			return err
		}

		values, err := userValues(user)
		if err != nil {
			return err
		}

		updateQuery, updateArgs, err := squirrel.
			Update(usersTable).
			SetMap(values).
			Where(squirrel.Eq{"id": id}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int, roles []model.Role) ([]*model.User, error) {
	builder := squirrel.
		Select(userColumns...).
		From(usersTable).
		OrderBy("score DESC", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if len(roles) > 0 {
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		builder = builder.Where(squirrel.Expr("role = ANY(?)", pq.Array(names)))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top users query: %w", err)
	}

	var rows []User
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}
