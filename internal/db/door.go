package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/jmoiron/sqlx"

	"github.com/sauerbraten/anonauth/pkg/auth"
)

// ErrNoDoorState is returned by LoadDoorState when no door state was saved yet.
var ErrNoDoorState = errors.New("db: no door state saved")

type doorRow struct {
	MaxRevocations int    `db:"max_revocations"`
	Epoch          int    `db:"epoch"`
	Challenge      []byte `db:"challenge"`
}

type coefficientRow struct {
	Epoch       int    `db:"epoch"`
	Power       int    `db:"power"`
	Coefficient []byte `db:"coefficient"`
}

// SaveDoorState replaces the stored door state, including the revocations, with s.
func (db *Database) SaveDoorState(s auth.State) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("db: starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"door", "secrets", "revocations"} {
		_, err = tx.Exec("delete from `" + table + "`")
		if err != nil {
			return fmt.Errorf("db: clearing %s table: %w", table, err)
		}
	}

	err = saveDoorRow(tx, s)
	if err != nil {
		return err
	}

	for epoch, coefficients := range s.Secrets {
		for power, c := range coefficients {
			_, err = tx.Exec("insert into `secrets` (`epoch`, `power`, `coefficient`) values (?, ?, ?)", epoch, power, c.Bytes())
			if err != nil {
				return fmt.Errorf("db: inserting coefficient %d of epoch %d: %w", power, epoch, err)
			}
		}
	}

	for i, user := range s.Blacklist {
		err = addRevocation(tx, user, i+1)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("db: saving door state: %w", err)
	}
	return nil
}

func saveDoorRow(tx *sqlx.Tx, s auth.State) error {
	var challenge []byte
	if s.Challenge != nil {
		challenge = s.Challenge.Bytes()
	}

	_, err := tx.Exec(
		"insert or replace into `door` (`id`, `max_revocations`, `epoch`, `challenge`) values (1, ?, ?, ?)",
		s.MaxRevocations, s.Epoch, challenge,
	)
	if err != nil {
		return fmt.Errorf("db: saving door row: %w", err)
	}
	return nil
}

// SaveRevocation records that user was revoked, moving the door to s.
// The secrets are never rewritten, since revoking doesn't change them.
func (db *Database) SaveRevocation(user auth.UserID, s auth.State) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("db: starting transaction: %w", err)
	}
	defer tx.Rollback()

	err = addRevocation(tx, user, s.Epoch)
	if err != nil {
		return err
	}

	err = saveDoorRow(tx, s)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("db: saving revocation of %d: %w", user, err)
	}
	return nil
}

func (db *Database) LoadDoorState() (auth.State, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	var door doorRow
	err := db.Get(&door, "select `max_revocations`, `epoch`, `challenge` from `door` where `id` = 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.State{}, ErrNoDoorState
		}
		return auth.State{}, fmt.Errorf("db: loading door state: %w", err)
	}

	s := auth.State{
		MaxRevocations: door.MaxRevocations,
		Epoch:          door.Epoch,
		Secrets:        make([][]*big.Int, door.MaxRevocations+1),
	}
	if door.Challenge != nil {
		s.Challenge = new(big.Int).SetBytes(door.Challenge)
	}

	var rows []coefficientRow
	err = db.Select(&rows, "select `epoch`, `power`, `coefficient` from `secrets` order by `epoch`, `power`")
	if err != nil {
		return auth.State{}, fmt.Errorf("db: loading secrets: %w", err)
	}
	for _, row := range rows {
		if row.Epoch < 0 || row.Epoch >= len(s.Secrets) || row.Power != len(s.Secrets[row.Epoch]) {
			return auth.State{}, fmt.Errorf("db: unexpected coefficient %d of epoch %d", row.Power, row.Epoch)
		}
		s.Secrets[row.Epoch] = append(s.Secrets[row.Epoch], new(big.Int).SetBytes(row.Coefficient))
	}

	err = db.Select(&s.Blacklist, "select `user` from `revocations` order by `epoch`")
	if err != nil {
		return auth.State{}, fmt.Errorf("db: loading revocations: %w", err)
	}

	return s, nil
}
