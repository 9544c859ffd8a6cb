package project

import (
	"time"

	"github.com/google/uuid"
)

const NameMaxLength = 255

type Project struct {
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func New(name string) *Project {
	return &Project{
		UUID: uuid.New(),
		Name: name,
	}
}
