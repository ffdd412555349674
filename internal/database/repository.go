package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Slide is one unit of a generated presentation. Positions are unique and
// contiguous within a presentation, starting at 1.
type Slide struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"` // image or video
}

type Presentation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	UserID    sql.NullInt64 `json:"user_id"`
	Slides    []Slide       `json:"slides"`
	HasVideo  bool          `json:"has_video"`
	CreatedAt time.Time     `json:"created_at"`
}

type GeneratedAsset struct {
	ID        int       `json:"id"`
	Filename  string    `json:"filename"`
	Checksum  string    `json:"checksum"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func SaveUser(db *sql.DB, u *User) (int, error) {
	query := `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int
	err := db.QueryRow(query, u.Email, u.Name, u.PasswordHash).Scan(&id)
	return id, err
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	var u User
	query := "SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1"
	err := db.QueryRow(query, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(db *sql.DB, id int) (*User, error) {
	var u User
	query := "SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1"
	err := db.QueryRow(query, id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func SavePresentation(db *sql.DB, p *Presentation) error {
	slidesJSON, err := json.Marshal(p.Slides)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO presentations (id, title, user_id, slides_data, has_video)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = db.Exec(query, p.ID, p.Title, p.UserID, slidesJSON, p.HasVideo)
	return err
}

func GetPresentation(db *sql.DB, id string) (*Presentation, error) {
	var p Presentation
	var slidesJSON []byte
	query := "SELECT id, title, user_id, slides_data, has_video, created_at FROM presentations WHERE id = $1"
	err := db.QueryRow(query, id).Scan(&p.ID, &p.Title, &p.UserID, &slidesJSON, &p.HasVideo, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slidesJSON, &p.Slides); err != nil {
		return nil, err
	}
	return &p, nil
}

func GetPresentationsByUser(db *sql.DB, userID int) ([]Presentation, error) {
	rows, err := db.Query("SELECT id, title, user_id, slides_data, has_video, created_at FROM presentations WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Presentation
	for rows.Next() {
		var p Presentation
		var slidesJSON []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.UserID, &slidesJSON, &p.HasVideo, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(slidesJSON, &p.Slides); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetGuestUsage returns the number of presentations a guest has generated.
// An unknown guest counts as zero.
func GetGuestUsage(db *sql.DB, guestID string) (int, error) {
	var count int
	err := db.QueryRow("SELECT generations FROM guest_usage WHERE guest_id = $1", guestID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// IncrementGuestUsage bumps the guest counter by one, creating the row on
// first use. The UPSERT keeps concurrent increments from losing updates.
func IncrementGuestUsage(db *sql.DB, guestID string) (int, error) {
	query := `
		INSERT INTO guest_usage (guest_id, generations)
		VALUES ($1, 1)
		ON CONFLICT (guest_id) DO UPDATE SET generations = guest_usage.generations + 1
		RETURNING generations
	`
	var count int
	err := db.QueryRow(query, guestID).Scan(&count)
	return count, err
}

func SaveGeneratedAsset(db *sql.DB, a *GeneratedAsset) (int, error) {
	query := `
		INSERT INTO generated_assets (filename, checksum, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (checksum) DO UPDATE SET filename = EXCLUDED.filename
		RETURNING id
	`
	var id int
	err := db.QueryRow(query, a.Filename, a.Checksum, a.Kind).Scan(&id)
	return id, err
}

func GetAssetByChecksum(db *sql.DB, checksum string) (*GeneratedAsset, error) {
	var a GeneratedAsset
	query := "SELECT id, filename, checksum, kind, created_at FROM generated_assets WHERE checksum = $1"
	err := db.QueryRow(query, checksum).Scan(&a.ID, &a.Filename, &a.Checksum, &a.Kind, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func GetTotalGenerationCount(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM presentations").Scan(&count)
	return count, err
}
