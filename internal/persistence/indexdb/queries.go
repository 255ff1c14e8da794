package indexdb

import (
	"context"
	"database/sql"
)

type ContentCount struct {
	Key   string `json:"key"`
	Opens int    `json:"opens"`
}

type ClueCount struct {
	Clue     int `json:"clue"`
	Sessions int `json:"sessions"`
}

// TopContent lists accepted opens per content key, most opened first.
func (s *SQLiteIndex) TopContent(ctx context.Context, limit int) ([]ContentCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_key, COUNT(*) AS n
		FROM acts
		WHERE op='open' AND accepted=1 AND content_key IS NOT NULL
		GROUP BY content_key
		ORDER BY n DESC, content_key ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ContentCount
	for rows.Next() {
		var c ContentCount
		if err := rows.Scan(&c.Key, &c.Opens); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClueCounts lists how many sessions found each clue.
func (s *SQLiteIndex) ClueCounts(ctx context.Context) ([]ClueCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT clue, COUNT(DISTINCT session_id)
		FROM clues
		GROUP BY clue
		ORDER BY clue ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClueCount
	for rows.Next() {
		var c ClueCount
		if err := rows.Scan(&c.Clue, &c.Sessions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) SessionCount(ctx context.Context) (int, error) {
	var n sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

// OpensByContent and ClueFinds give the dashboard its map-shaped view.

func (s *SQLiteIndex) OpensByContent(ctx context.Context) (map[string]int, error) {
	top, err := s.TopContent(ctx, 64)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(top))
	for _, c := range top {
		out[c.Key] = c.Opens
	}
	return out, nil
}

func (s *SQLiteIndex) ClueFinds(ctx context.Context) (map[int]int, error) {
	counts, err := s.ClueCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(counts))
	for _, c := range counts {
		out[c.Clue] = c.Sessions
	}
	return out, nil
}
