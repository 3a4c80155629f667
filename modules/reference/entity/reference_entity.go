package entity

import "github.com/google/uuid"

type State struct {
	ID           uuid.UUID `db:"id" json:"id"`
	State        string    `db:"state" json:"state"`
	Abbreviation string    `db:"state_abbreviation" json:"state_abbreviation"`
}

type Timezone struct {
	ID       int    `db:"id" json:"id"`
	Timezone string `db:"timezone" json:"timezone"`
}
