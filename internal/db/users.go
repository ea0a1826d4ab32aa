package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sauerbraten/anonauth/pkg/auth"
)

type User struct {
	ID         auth.UserID `db:"id" json:"id"`
	EnrolledAt int64       `db:"enrolled_at" json:"enrolled_at"`
	Revoked    bool        `db:"revoked" json:"revoked"`
}

type UserExistsError auth.UserID

func (e UserExistsError) Error() string {
	return fmt.Sprintf("db: user %d already exists", auth.UserID(e))
}

func (db *Database) AddUser(user auth.UserID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	count := 0
	err := db.Get(&count, "select count(*) from `users` where `id` = ?", user)
	if err != nil {
		return fmt.Errorf("db: checking if user %d exists: %w", user, err)
	}
	if count > 0 {
		return UserExistsError(user)
	}

	_, err = db.Exec("insert into `users` (`id`) values (?)", user)
	if err != nil {
		return fmt.Errorf("db: inserting (%d) into users table: %w", user, err)
	}

	return nil
}

type UserNotFoundError auth.UserID

func (e UserNotFoundError) Error() string {
	return fmt.Sprintf("db: no user with ID %d", auth.UserID(e))
}

const selectUsers = "select `users`.`id`, `users`.`enrolled_at`, `revocations`.`user` is not null as `revoked` " +
	"from `users` left join `revocations` on `revocations`.`user` = `users`.`id`"

func (db *Database) GetUser(user auth.UserID) (u User, err error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err = db.Get(&u, selectUsers+" where `users`.`id` = ?", user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, UserNotFoundError(user)
		}
		return User{}, fmt.Errorf("db: retrieving user %d: %w", user, err)
	}

	return
}

func (db *Database) Users() ([]User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	users := []User{}
	err := db.Select(&users, selectUsers+" order by `users`.`id`")
	if err != nil {
		return nil, fmt.Errorf("db: listing users: %w", err)
	}
	return users, nil
}
