package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sauerbraten/anonauth/pkg/auth"
)

type Revocation struct {
	User      auth.UserID `db:"user" json:"user"`
	Epoch     int         `db:"epoch" json:"epoch"`
	RevokedAt int64       `db:"revoked_at" json:"revoked_at"`
}

func addRevocation(e sqlx.Execer, user auth.UserID, epoch int) error {
	_, err := e.Exec("insert into `revocations` (`user`, `epoch`) values (?, ?)", user, epoch)
	if err != nil {
		return fmt.Errorf("db: inserting (%d, %d) into revocations table: %w", user, epoch, err)
	}
	return nil
}

func (db *Database) IsRevoked(user auth.UserID) (bool, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	count := 0
	err := db.Get(&count, "select count(*) from `revocations` where `user` = ?", user)
	if err != nil {
		return false, fmt.Errorf("db: checking if %d is in revocations table: %w", user, err)
	}
	return count == 1, nil
}

// Revocations returns all revocations in the order they happened.
func (db *Database) Revocations() ([]Revocation, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	revocations := []Revocation{}
	err := db.Select(&revocations, "select `user`, `epoch`, `revoked_at` from `revocations` order by `epoch`")
	if err != nil {
		return nil, fmt.Errorf("db: listing revocations: %w", err)
	}
	return revocations, nil
}
