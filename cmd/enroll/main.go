package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/sauerbraten/anonauth/internal/cardfile"
	"github.com/sauerbraten/anonauth/internal/config"
	"github.com/sauerbraten/anonauth/internal/db"
	"github.com/sauerbraten/anonauth/pkg/auth"
)

var errRevoked = errors.New("user is revoked")

// Command enroll issues a credential straight from the door's database, without a running door.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: enroll <user> <card file> [config file]")
		os.Exit(1)
		return
	}

	id, err := strconv.ParseUint(os.Args[1], 10, 16)
	if err != nil {
		log.Fatalln("invalid user ID:", err)
	}
	user, cardFilePath := auth.UserID(id), os.Args[2]

	configFilePath := config.DefaultPath
	if len(os.Args) >= 4 {
		configFilePath = os.Args[3]
	}
	conf, err := config.Load(configFilePath)
	if err != nil {
		log.Fatalln(err)
	}

	store, err := db.New(conf.DatabaseFilePath)
	if err != nil {
		log.Fatalln("error opening door database:", err)
	}
	defer store.Close()

	err = enroll(store, user, cardFilePath, conf.ListenAddress)
	if err != nil {
		log.Fatalln(err)
	}
}

func enroll(store *db.Database, user auth.UserID, cardFilePath, doorAddress string) error {
	if _, err := os.Stat(cardFilePath); err == nil {
		return fmt.Errorf("%s already exists", cardFilePath)
	}

	// a revoked user's point is public, so a new credential could never authenticate
	revoked, err := store.IsRevoked(user)
	if err != nil {
		return err
	}
	if revoked {
		return fmt.Errorf("can't enroll user %d: %w", user, errRevoked)
	}

	state, err := store.LoadDoorState()
	if err != nil {
		return fmt.Errorf("error loading door state (has the door been started before?): %w", err)
	}

	door, err := auth.Restore(state)
	if err != nil {
		return fmt.Errorf("error restoring door: %w", err)
	}

	credential, err := door.PrivatePoints(user)
	if err != nil {
		return fmt.Errorf("error computing credential: %w", err)
	}

	err = store.AddUser(user)
	if err != nil {
		return fmt.Errorf("error adding user to database: %w", err)
	}

	return cardfile.Write(cardFilePath, &cardfile.File{User: user, Door: doorAddress, Points: credential})
}
