package repo

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/staybook/audit-service/internal/models"
)

// OperatorRepo manages operator accounts for the audit API.
type OperatorRepo struct {
	DB *sql.DB
}

// NewOperatorRepo returns a new OperatorRepo.
func NewOperatorRepo(db *sql.DB) *OperatorRepo {
	return &OperatorRepo{DB: db}
}

// Create stores a new operator with a bcrypt password hash.
func (r *OperatorRepo) Create(email, password, role string) (*models.Operator, error) {
	if role != models.RoleAdmin && role != models.RoleAuditor {
		return nil, errors.New("invalid role")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	op := &models.Operator{}
	err = r.DB.QueryRow(
		`INSERT INTO operators (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, role`,
		email, string(hash), role,
	).Scan(&op.ID, &op.Email, &op.Role)
	if err != nil {
		return nil, err
	}
	return op, nil
}

// GetByEmail returns the operator with the given email.
func (r *OperatorRepo) GetByEmail(email string) (*models.Operator, error) {
	op := &models.Operator{}
	err := r.DB.QueryRow(
		`SELECT id, email, password_hash, role FROM operators WHERE email = $1`,
		email,
	).Scan(&op.ID, &op.Email, &op.PasswordHash, &op.Role)
	if err == sql.ErrNoRows {
		return nil, errors.New("operator not found")
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}
