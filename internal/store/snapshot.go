package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RoleStudent is the users.role value of students.
const RoleStudent = "STUDENT"

// User is a row of the users table.
type User struct {
	ID   int64  `db:"id"`
	Role string `db:"role"`
}

// Gameboard is a row of the gameboards table. PageIDs keeps the board's order.
type Gameboard struct {
	ID           string
	OwnerUserID  int64
	CreationDate time.Time
	PageIDs      []string
}

// Content is a row of the content_data table.
type Content struct {
	PageID     string `db:"page_id"`
	QuestionID string `db:"question_id"`
	Type       string `db:"type"`
}

// Attempt is a row of the question_attempts table.
type Attempt struct {
	UserID     int64
	QuestionID string
	Timestamp  time.Time
	Correct    bool
}

type pageRef struct {
	ID string `json:"id"`
}

func (s *Store) requireSnapshot() error {
	if s.driver != DriverSQLite {
		return fmt.Errorf("writes are only allowed on sqlite snapshots, not %s", s.driver)
	}
	return nil
}

// InsertUser adds a user to the snapshot.
func (s *Store) InsertUser(ctx context.Context, u *User) error {
	if err := s.requireSnapshot(); err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO users (id, role) VALUES (?, ?)", u.ID, u.Role); err != nil {
		return fmt.Errorf("inserting user %d: %w", u.ID, err)
	}
	return nil
}

// InsertGameboard adds a gameboard to the snapshot.
func (s *Store) InsertGameboard(ctx context.Context, g *Gameboard) error {
	if err := s.requireSnapshot(); err != nil {
		return err
	}

	refs := make([]pageRef, 0, len(g.PageIDs))
	for _, id := range g.PageIDs {
		refs = append(refs, pageRef{ID: id})
	}
	contents, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("encoding gameboard contents: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO gameboards (id, owner_user_id, creation_date, contents) VALUES (?, ?, ?, ?)",
		g.ID, g.OwnerUserID, FormatTime(g.CreationDate), string(contents),
	)
	if err != nil {
		return fmt.Errorf("inserting gameboard %s: %w", g.ID, err)
	}
	return nil
}

// InsertContent adds a question part to the snapshot.
func (s *Store) InsertContent(ctx context.Context, c *Content) error {
	if err := s.requireSnapshot(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO content_data (page_id, question_id, type) VALUES (?, ?, ?)",
		c.PageID, c.QuestionID, c.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting content %s/%s: %w", c.PageID, c.QuestionID, err)
	}
	return nil
}

// InsertAttempt records a question attempt in the snapshot.
func (s *Store) InsertAttempt(ctx context.Context, a *Attempt) error {
	if err := s.requireSnapshot(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO question_attempts (user_id, question_id, timestamp, correct) VALUES (?, ?, ?, ?)",
		a.UserID, a.QuestionID, FormatTime(a.Timestamp), a.Correct,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt by user %d: %w", a.UserID, err)
	}
	return nil
}

// TableCounts returns the number of rows in each snapshot table.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range []string{"users", "gameboards", "content_data", "question_attempts"} {
		var n int64
		if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
