// Package officers authenticates police console users against a seeded
// directory of bcrypt password hashes.
package officers

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"abhaya/internal/auth/models"
	dErrors "abhaya/pkg/domain-errors"
)

// Officer is one directory entry.
type Officer struct {
	BadgeID      string
	Name         string
	Station      string
	PasswordHash string
}

// Profile returns the session principal of o.
func (o Officer) Profile() models.OfficerProfile {
	return models.OfficerProfile{BadgeID: o.BadgeID, Name: o.Name, Station: o.Station}
}

// Directory maps badge IDs to officers.
type Directory struct {
	officers map[string]Officer
	// compared against for unknown badges so lookups cost the same either way
	dummyHash []byte
}

func NewDirectory(officers ...Officer) *Directory {
	d := &Directory{officers: make(map[string]Officer, len(officers))}
	for _, o := range officers {
		d.officers[normalizeBadge(o.BadgeID)] = o
	}
	d.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("abhaya-unknown-badge"), bcrypt.MinCost)
	return d
}

// Len reports the number of officers.
func (d *Directory) Len() int { return len(d.officers) }

// Authenticate checks badge and password. Unknown badges and wrong passwords
// produce the same unauthorized error.
func (d *Directory) Authenticate(badgeID, password string) (Officer, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid badge id or password")

	officer, ok := d.officers[normalizeBadge(badgeID)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.dummyHash, []byte(password))
		return Officer{}, invalid
	}
	if err := Verify(password, officer.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return Officer{}, invalid
		}
		return Officer{}, err
	}
	return officer, nil
}

// Hash creates a bcrypt hash of password for seeding the directory.
func Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext password matches a bcrypt hash.
func Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid password")
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}

// ParseSeed reads "badge:name:station:hash" entries separated by commas.
// Station may be empty. Whitespace around entries is ignored.
func ParseSeed(seed string) ([]Officer, error) {
	var out []Officer
	for i, entry := range strings.Split(seed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("officer entry %d: want badge:name:station:hash", i+1)
		}
		o := Officer{
			BadgeID:      strings.TrimSpace(parts[0]),
			Name:         strings.TrimSpace(parts[1]),
			Station:      strings.TrimSpace(parts[2]),
			PasswordHash: strings.TrimSpace(parts[3]),
		}
		if o.BadgeID == "" || o.Name == "" {
			return nil, fmt.Errorf("officer entry %d: badge and name are required", i+1)
		}
		if _, err := bcrypt.Cost([]byte(o.PasswordHash)); err != nil {
			return nil, fmt.Errorf("officer entry %d: password hash: %w", i+1, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func normalizeBadge(badge string) string {
	return strings.ToUpper(strings.TrimSpace(badge))
}
