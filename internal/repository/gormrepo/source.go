// Package gormrepo implements the repository interfaces on top of gorm.
package gormrepo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/driftportal/facility-api/internal/repository"
)

// NewSource wires every gorm repository against db
func NewSource(db *gorm.DB, name string) *repository.Source {
	return &repository.Source{
		Name:       name,
		Properties: NewPropertyRepository(db),
		Units:      NewUnitRepository(db),
		Users:      NewUserRepository(db),
		Cases:      NewCaseRepository(db),
		Tasks:      NewTaskRepository(db),
		Plans:      NewMaintenancePlanRepository(db),
		Comments:   NewCaseCommentRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// translate maps gorm errors onto repository errors
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// affected returns ErrNotFound when a write touched no rows
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps query for a substring LIKE with its wildcards escaped
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// search returns up to limit rows where any column contains query, ignoring
// case. PostgreSQL matches with ILIKE. SQLite's LOWER and LIKE fold ASCII
// only, so there rows are matched here against text(row) with Unicode case
// folding; that scans the table and is meant for local single-file databases.
func search[T any](ctx context.Context, db *gorm.DB, query string, limit int, order string, text func(*T) []string, columns ...string) ([]T, error) {
	tx := db.WithContext(ctx)
	if order != "" {
		tx = tx.Order(order)
	}

	var rows []T
	if db.Dialector.Name() == "postgres" {
		pattern := likePattern(query)
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = col + ` ILIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		err := tx.Where(strings.Join(conds, " OR "), args...).Limit(limit).Find(&rows).Error
		return rows, err
	}

	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var out []T
	for i := range rows {
		if limit > 0 && len(out) == limit {
			break
		}
		for _, field := range text(&rows[i]) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, rows[i])
				break
			}
		}
	}
	return out, nil
}
