package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventario-core/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// uniqueField deduce el campo duplicado a partir del nombre del constraint.
func uniqueField(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.Contains(pgErr.ConstraintName, "barcode"):
			return "barcode"
		case strings.Contains(pgErr.ConstraintName, "sku"):
			return "sku"
		case strings.Contains(pgErr.ConstraintName, "batch"):
			return "batch_number"
		}
	}
	return ""
}

// isTransient clasifica errores recuperables de PostgreSQL: fallo de
// serialización (40001), deadlock (40P01), lock no disponible (55P03) y
// cancelación por statement_timeout (57014).
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57014":
			return true
		}
	}
	return false
}

// mapError envuelve errores de pg en los sentinelas de dominio: únicos →
// ErrDuplicate, transitorios → ErrDatabase (reintentable por el mutador).
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		if field := uniqueField(err); field != "" {
			return fmt.Errorf("%s: %s duplicado: %w", op, field, domain.ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	if isTransient(err) {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrDatabase)
	}
	return fmt.Errorf("%s: %w", op, err)
}
