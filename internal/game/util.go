package game

import (
	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// ShortID is the tail of a v7 id, random enough for player ids within one room.
func ShortID() string {
	id := GenID()
	return id[len(id)-12:]
}
