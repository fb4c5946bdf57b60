package domain

import (
	"slices"
	"strings"
)

// User is the points ledger of a single account.
type User struct {
	Username string
	Role     Role
	Points   int
	Level    int
	Medals   []string
}

// NewUser creates a user with zero points at level 1.
func NewUser(username string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &User{Username: username, Role: role, Level: 1, Medals: []string{}}, nil
}

// LevelFor derives the level for a points total.
func LevelFor(points int) int {
	return max(1, 1+points/100)
}

// AddPoints credits amount and recomputes the level.
func (u *User) AddPoints(amount int) {
	u.Points += amount
	u.Level = LevelFor(u.Points)
}

// SetPoints overwrites the total and recomputes the level.
func (u *User) SetPoints(points int) {
	u.Points = points
	u.Level = LevelFor(points)
}

// HasMedal reports whether medal is held.
func (u *User) HasMedal(medal string) bool {
	return slices.Contains(u.Medals, medal)
}

// AddMedal appends medal unless already held. It reports whether it was added.
func (u *User) AddMedal(medal string) bool {
	if u.HasMedal(medal) {
		return false
	}
	u.Medals = append(u.Medals, medal)
	return true
}

// RemoveMedal drops medal, keeping the order of the rest.
func (u *User) RemoveMedal(medal string) bool {
	i := slices.Index(u.Medals, medal)
	if i < 0 {
		return false
	}
	u.Medals = slices.Delete(u.Medals, i, i+1)
	return true
}

// Snapshot copies the user so callers cannot alias the medal slice.
func (u *User) Snapshot() User {
	cp := *u
	cp.Medals = slices.Clone(u.Medals)
	if cp.Medals == nil {
		cp.Medals = []string{}
	}
	return cp
}

// Record converts the user to its persisted form.
func (u *User) Record() LedgerRecord {
	snap := u.Snapshot()
	return LedgerRecord{Role: snap.Role, Points: snap.Points, Level: snap.Level, Medals: snap.Medals}
}

// Restore overwrites the mutable ledger fields from a record.
// The level is derived from points, not taken from the record.
func (u *User) Restore(rec LedgerRecord) {
	u.SetPoints(rec.Points)
	u.Medals = slices.Clone(rec.Medals)
	if u.Medals == nil {
		u.Medals = []string{}
	}
}
