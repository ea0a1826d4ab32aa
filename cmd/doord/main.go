package main

import (
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/sauerbraten/anonauth/internal/api"
	"github.com/sauerbraten/anonauth/internal/config"
	"github.com/sauerbraten/anonauth/internal/db"
	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/server"
)

func main() {
	configFilePath := config.DefaultPath
	if len(os.Args) >= 2 {
		configFilePath = os.Args[1]
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

	door, err := loadDoor(store, conf.MaxRevocations)
	if err != nil {
		log.Fatalln("error setting up door:", err)
	}
	log.Println("door is in epoch", door.Epoch())

	admins, err := conf.AdminKeys()
	if err != nil {
		log.Fatalln(err)
	}

	addr, err := net.ResolveTCPAddr("tcp", conf.ListenAddress)
	if err != nil {
		log.Fatalf("error resolving listen address %s: %v", conf.ListenAddress, err)
	}

	stop := make(chan struct{})

	s := server.New(addr, door, store, admins, stop)
	go func() {
		err := s.Listen()
		if err != nil {
			log.Fatalln(err)
		}
	}()

	if conf.WebInterfaceAddress != "" {
		go func() {
			log.Println("web interface listening on", conf.WebInterfaceAddress)
			err := http.ListenAndServe(conf.WebInterfaceAddress, api.NewRouter(door, store))
			if err != nil {
				log.Println(err)
			}
		}()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	<-interrupt
	close(stop)
}

// loadDoor restores the door from the database, or sets up a new one on first start.
func loadDoor(store *db.Database, maxRevocations int) (*auth.Door, error) {
	state, err := store.LoadDoorState()
	if errors.Is(err, db.ErrNoDoorState) {
		door, err := auth.NewDoor(maxRevocations)
		if err != nil {
			return nil, err
		}
		err = store.SaveDoorState(door.State())
		if err != nil {
			return nil, err
		}
		log.Printf("set up new door supporting %d revocations", maxRevocations)
		return door, nil
	}
	if err != nil {
		return nil, err
	}

	if state.MaxRevocations != maxRevocations {
		log.Printf("ignoring max_revocations = %d: the stored door supports %d revocations", maxRevocations, state.MaxRevocations)
	}

	// the stored challenge may already have been answered
	state.Challenge = nil

	return auth.Restore(state)
}
