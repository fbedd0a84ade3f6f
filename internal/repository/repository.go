package repository

import (
	"holidaze/internal/database"
)

type Repositories struct {
	Sessions *SessionRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Sessions: NewSessionRepository(db),
	}
}
