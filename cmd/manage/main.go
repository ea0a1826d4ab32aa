package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/sauerbraten/anonauth/internal/cardfile"
	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/client"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

var (
	adminName string
	adminKey  []byte
	address   string
)

func init() {
	adminName = mustEnv("DOOR_ADMIN_NAME")

	var err error
	adminKey, err = hex.DecodeString(mustEnv("DOOR_ADMIN_KEY"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "DOOR_ADMIN_KEY is not hex encoded:", err)
		os.Exit(-1)
	}

	address = mustEnv("DOOR_ADDRESS")
}

func mustEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		fmt.Fprintln(os.Stderr, name, "environment variable not set")
		os.Exit(-1)
	}
	return value
}

func usage() {
	fmt.Println("Usage: manage enroll <user> <card file>")
	fmt.Println("       manage revoke <user>")
	os.Exit(1)
}

func main() {
	switch len(os.Args) {
	case 3:
		if os.Args[1] != protocol.Revoke {
			usage()
		}
		revoke(parseUser(os.Args[2]))
	case 4:
		if os.Args[1] != protocol.Enroll {
			usage()
		}
		enroll(parseUser(os.Args[2]), os.Args[3])
	default:
		usage()
	}
}

func parseUser(s string) auth.UserID {
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid user ID:", err)
		os.Exit(1)
	}
	return auth.UserID(id)
}

func connect() *client.Admin {
	admin, err := client.DialAdmin(address, adminName, adminKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not authenticate as admin:", err)
		os.Exit(3)
	}
	return admin
}

func enroll(user auth.UserID, cardFilePath string) {
	// fail before touching the door if the card file can't be written
	if _, err := os.Stat(cardFilePath); err == nil {
		fmt.Fprintln(os.Stderr, cardFilePath, "already exists")
		os.Exit(1)
	}

	admin := connect()
	defer admin.Close()

	credential, err := admin.Enroll(user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error running", protocol.Enroll, "command:", err)
		os.Exit(4)
	}

	err = cardfile.Write(cardFilePath, &cardfile.File{User: user, Door: address, Points: credential})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(5)
	}

	fmt.Printf("enrolled user %d, credential written to %s\n", user, cardFilePath)
}

func revoke(user auth.UserID) {
	admin := connect()
	defer admin.Close()

	epoch, err := admin.Revoke(user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error running", protocol.Revoke, "command:", err)
		os.Exit(4)
	}

	fmt.Printf("revoked user %d, door is now in epoch %d\n", user, epoch)
}
