package postgres

import (
	"database/sql"
	"errors"

	"github.com/bp848/mqdriven-sub004/internal/user"
	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID         int64        `db:"id"`
	Email      string       `db:"email"`
	Name       string       `db:"name"`
	Department string       `db:"department"`
	IsActive   bool         `db:"is_active"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var row userRow
	err := r.db.Get(&row,
		`SELECT id, email, name, department, is_active, created_at, updated_at
		 FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	u := &user.User{
		ID:         row.ID,
		Email:      row.Email,
		Name:       row.Name,
		Department: row.Department,
		IsActive:   row.IsActive,
	}
	if row.CreatedAt.Valid {
		u.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		u.UpdatedAt = row.UpdatedAt.Time
	}
	return u, nil
}

func (r *UserRepository) GetPermissions(userID int64) ([]string, error) {
	var permissions []string
	err := r.db.Select(&permissions,
		`SELECT p.name
		 FROM permissions p
		 JOIN user_permissions up ON p.id = up.permission_id
		 WHERE up.user_id = $1
		 ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	return permissions, nil
}
