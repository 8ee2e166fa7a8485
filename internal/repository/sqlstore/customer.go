package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
)

type customerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Upsert(ctx context.Context, c *domain.Customer) (bool, error) {
	logger.EnterMethod("customerRepository.Upsert", "customerID", c.ID)

	query := `INSERT INTO customers (customer_id, first_name, last_name, email)
	          VALUES ($1, $2, $3, $4) ON CONFLICT (customer_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.FirstName, c.LastName, nullString(c.Email))
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Upsert", err, "customerID", c.ID)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	logger.ExitMethod("customerRepository.Upsert", "customerID", c.ID, "inserted", n > 0)
	return n > 0, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT customer_id, first_name, last_name, email FROM customers WHERE customer_id = $1`
	var c domain.Customer
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	return &c, nil
}

// Search matches the query case-insensitively against first name, last name,
// the full name, and the decimal customer id.
func (r *customerRepository) Search(ctx context.Context, q string) ([]domain.Customer, error) {
	logger.EnterMethod("customerRepository.Search", "query", q)

	query := `SELECT customer_id, first_name, last_name, email FROM customers
	          WHERE LOWER(first_name) LIKE $1
	             OR LOWER(last_name) LIKE $1
	             OR LOWER(first_name || ' ' || last_name) LIKE $1
	             OR CAST(customer_id AS TEXT) LIKE $1
	          ORDER BY last_name, first_name, customer_id`
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	rows, err := r.db.QueryContext(ctx, query, pattern)
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Search", err)
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		var email sql.NullString
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &email); err != nil {
			return nil, err
		}
		if email.Valid {
			e := email.String
			c.Email = &e
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("customerRepository.Search", "count", len(customers))
	return customers, nil
}
