package model

import "time"

// Group is a named role group, e.g. "Meseros", "Cocina", "Gerente".
type Group struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// User is a staff account. Superusers bypass all group checks.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:128;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:128" json:"firstName"`
	LastName     string    `gorm:"size:128" json:"lastName"`
	Email        string    `gorm:"size:256" json:"email"`
	Superuser    bool      `gorm:"not null;default:false" json:"isSuperuser"`
	CreatedAt    time.Time `gorm:"not null" json:"-"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`

	// Associations
	Groups []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`
}

// GroupNames returns the names of all groups the user belongs to.
func (u *User) GroupNames() []string {
	names := make([]string, len(u.Groups))
	for i, g := range u.Groups {
		names[i] = g.Name
	}
	return names
}
