package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"classify-backend/internal/recommend"
	"classify-backend/internal/shared/telemetry"
)

// SQLRepo implements Repo over database/sql. The same statements run on Postgres and SQLite.
type SQLRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// NewSQLRepo constructs a SQLRepo.
func NewSQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{DB: db, now: time.Now}
}

const profileColumns = `id, created_at, subjects, grades, favorite_subjects, hobbies, interests,
       personality_type, personality_scores, recommendations`

// Create inserts a new profile with empty recommendations.
func (r *SQLRepo) Create(ctx context.Context, in NewProfile) (Profile, error) {
	const query = `
INSERT INTO user_profiles (
	created_at, subjects, grades, favorite_subjects, hobbies, interests,
	personality_type, personality_scores, recommendations
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	in = in.normalized()
	p := Profile{
		CreatedAt:         r.clock().UTC().Truncate(time.Microsecond),
		Subjects:          in.Subjects,
		Grades:            in.Grades,
		FavoriteSubjects:  in.FavoriteSubjects,
		Hobbies:           in.Hobbies,
		Interests:         in.Interests,
		PersonalityType:   in.PersonalityType,
		PersonalityScores: in.PersonalityScores,
		Recommendations:   []recommend.Recommendation{},
	}

	args, err := marshalColumns(
		p.Subjects, p.Grades, p.FavoriteSubjects, p.Hobbies, p.Interests,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	scores, err := marshalJSON(p.PersonalityScores)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	err = r.DB.QueryRowContext(ctx, query,
		p.CreatedAt,
		args[0],
		args[1],
		args[2],
		args[3],
		args[4],
		p.PersonalityType,
		scores,
		"[]",
	).Scan(&p.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: insert profile: %w", ErrPersistence, err)
	}
	return p, nil
}

// AttachRecommendations overwrites the recommendations of a profile in one statement.
func (r *SQLRepo) AttachRecommendations(ctx context.Context, id int64, recs []recommend.Recommendation) (Profile, error) {
	query := `
UPDATE user_profiles
SET recommendations = $1
WHERE id = $2
RETURNING ` + profileColumns
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	payload, err := marshalJSON(recs)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, payload, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("%w: attach recommendations: %w", ErrPersistence, err)
	}
	return p, nil
}

// GetByID returns a profile by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id int64) (Profile, error) {
	query := `
SELECT ` + profileColumns + `
FROM user_profiles
WHERE id = $1
LIMIT 1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("%w: get profile: %w", ErrPersistence, err)
	}
	return p, nil
}

// List returns all profiles, newest first.
func (r *SQLRepo) List(ctx context.Context) ([]Profile, error) {
	query := `
SELECT ` + profileColumns + `
FROM user_profiles
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list profiles: %w", ErrPersistence, err)
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list profiles: %w", ErrPersistence, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list profiles: %w", ErrPersistence, err)
	}
	return out, nil
}

func (r *SQLRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var (
		p                 Profile
		subjects          []byte
		grades            []byte
		favoriteSubjects  []byte
		hobbies           []byte
		interests         []byte
		personalityType   sql.NullString
		personalityScores []byte
		recommendations   []byte
	)
	err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&subjects,
		&grades,
		&favoriteSubjects,
		&hobbies,
		&interests,
		&personalityType,
		&personalityScores,
		&recommendations,
	)
	if err != nil {
		return Profile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if personalityType.Valid {
		p.PersonalityType = personalityType.String
	}

	p.Subjects = []string{}
	p.Grades = map[string]string{}
	p.FavoriteSubjects = []string{}
	p.Hobbies = []string{}
	p.Interests = []string{}
	p.PersonalityScores = map[string]any{}
	p.Recommendations = []recommend.Recommendation{}
	unmarshalColumn(p.ID, "subjects", subjects, &p.Subjects)
	unmarshalColumn(p.ID, "grades", grades, &p.Grades)
	unmarshalColumn(p.ID, "favorite_subjects", favoriteSubjects, &p.FavoriteSubjects)
	unmarshalColumn(p.ID, "hobbies", hobbies, &p.Hobbies)
	unmarshalColumn(p.ID, "interests", interests, &p.Interests)
	unmarshalColumn(p.ID, "personality_scores", personalityScores, &p.PersonalityScores)
	unmarshalColumn(p.ID, "recommendations", recommendations, &p.Recommendations)
	return p, nil
}

// unmarshalColumn decodes a JSON column into dest; undecodable values keep dest's empty default.
func unmarshalColumn(id int64, column string, raw []byte, dest any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		telemetry.Warn("profiles.decode_column", map[string]any{
			"profile_id": id,
			"column":     column,
			"err":        err,
		})
	}
}

func marshalColumns(values ...any) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, err := marshalJSON(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// marshalJSON renders a JSON column value as text, which both JSONB and TEXT columns accept.
func marshalJSON(value any) (string, error) {
	if value == nil {
		return "{}", nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
