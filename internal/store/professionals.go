// internal/store/professionals.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

const professionalCacheKeyPrefix = "professional:profile:"

// GetProfessional loads a professional with credentials, reading through
// the Redis cache. Cache entries live for the configured TTL; workflow
// writes invalidate explicitly.
func (s *Store) GetProfessional(ctx context.Context, id string) (*models.HealthcareProfessional, error) {
	cacheKey := professionalCacheKeyPrefix + id
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil {
			var p models.HealthcareProfessional
			if err := json.Unmarshal([]byte(val), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.loadProfessional(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				s.logger.Warn("profile cache write failed", map[string]interface{}{
					"professionalId": id,
					"error":          err.Error(),
				})
			}
		}
	}
	return p, nil
}

// InvalidateProfessional drops a cached profile after a write.
func (s *Store) InvalidateProfessional(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, professionalCacheKeyPrefix+id)
}

func (s *Store) loadProfessional(ctx context.Context, id string) (*models.HealthcareProfessional, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, specialty, years_experience,
		       city, state, skills, availability, salary_min, salary_max, status,
		       last_placed_at, created_at, updated_at
		FROM professionals WHERE id = $1`, id)

	var p models.HealthcareProfessional
	var skills pq.StringArray
	var lastPlaced sql.NullTime
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Specialty, &p.YearsExperience, &p.Location.City, &p.Location.State,
		&skills, &p.Availability, &p.SalaryExpectation.Min, &p.SalaryExpectation.Max,
		&p.Status, &lastPlaced, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engineerrors.NewRecordNotFoundError("professional", id)
	}
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("get_professional", err)
	}
	p.Skills = skills
	if lastPlaced.Valid {
		p.LastPlacedAt = &lastPlaced.Time
	}

	creds, err := s.listCredentials(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Credentials = creds
	return &p, nil
}

// ListActiveBySpecialty returns the active candidate pool for a specialty,
// credentials included, for ranking.
func (s *Store) ListActiveBySpecialty(ctx context.Context, specialty string) ([]*models.HealthcareProfessional, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM professionals
		WHERE status = $1 AND LOWER(specialty) = LOWER($2) ORDER BY id`,
		models.ProfessionalActive, specialty)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_professionals", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_professionals", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_professionals", err)
	}

	pool := make([]*models.HealthcareProfessional, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetProfessional(ctx, id)
		if err != nil {
			return nil, err
		}
		pool = append(pool, p)
	}
	return pool, nil
}

func (s *Store) listCredentials(ctx context.Context, professionalID string) ([]models.Credential, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, professional_id, type, issuing_body, number, jurisdiction, issued_at, expires_at, status
		FROM credentials WHERE professional_id = $1 ORDER BY id`, professionalID)
	if err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_credentials", err)
	}
	defer rows.Close()

	var creds []models.Credential
	for rows.Next() {
		var c models.Credential
		var expiresAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.ProfessionalID, &c.Type, &c.IssuingBody,
			&c.Number, &c.Jurisdiction, &c.IssuedAt, &expiresAt, &c.Status); err != nil {
			return nil, engineerrors.NewQueryExecutionFailedError("list_credentials", err)
		}
		if expiresAt.Valid {
			c.ExpiresAt = &expiresAt.Time
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, engineerrors.NewQueryExecutionFailedError("list_credentials", err)
	}
	return creds, nil
}
