package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sauerbraten/anonauth/internal/db"
	"github.com/sauerbraten/anonauth/pkg/auth"
)

// Registry lists enrolled and revoked users.
type Registry interface {
	Users() ([]db.User, error)
	GetUser(user auth.UserID) (db.User, error)
	Revocations() ([]db.Revocation, error)
}

type API struct {
	chi.Router
	door     *auth.Door
	registry Registry
}

type Status struct {
	Epoch                int           `json:"epoch"`
	MaxRevocations       int           `json:"max_revocations"`
	RemainingRevocations int           `json:"remaining_revocations"`
	PublicShares         int           `json:"public_shares"`
	Revoked              []auth.UserID `json:"revoked"`
}

func NewAPI(door *auth.Door, registry Registry) *API {
	a := &API{
		Router:   chi.NewRouter(),
		door:     door,
		registry: registry,
	}

	a.Use(middleware.SetHeader("Content-Type", "application/json; charset=utf-8"))

	a.Get("/status", a.status)
	a.Get("/users", a.users)
	a.Get("/users/{id}", a.user)
	a.Get("/revocations", a.revocations)

	return a
}

// NewRouter wraps the API with request logging and adds the /metrics and /help endpoints.
func NewRouter(door *auth.Door, registry Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RedirectSlashes,
		requestLogging,
	)

	r.Mount("/", NewAPI(door, registry))
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/help", func(resp http.ResponseWriter, req *http.Request) {
		url := func(s string) string { return "http://" + req.Host + s }
		writeln := func(s string) { resp.Write([]byte(s + "\n")) }

		writeln("endpoints:")
		writeln("- /status")
		writeln("- /users")
		writeln("- /users/{id}")
		writeln("- /revocations")
		writeln("- /metrics")
		writeln("")
		writeln("examples:")
		writeln(url("/status"))
		writeln(url("/revocations"))
	})

	return r
}

func (a *API) status(resp http.ResponseWriter, req *http.Request) {
	epoch := a.door.Epoch()
	revoked := a.door.Blacklist()
	if revoked == nil {
		revoked = []auth.UserID{}
	}

	respondWithJSON(resp, Status{
		Epoch:                epoch.Index(),
		MaxRevocations:       epoch.Max(),
		RemainingRevocations: epoch.Remaining(),
		PublicShares:         a.door.PublicShares().Len(),
		Revoked:              revoked,
	})
}

func (a *API) users(resp http.ResponseWriter, req *http.Request) {
	users, err := a.registry.Users()
	if err != nil {
		respondWithError(resp, http.StatusInternalServerError, err)
		return
	}

	respondWithJSON(resp, users)
}

func (a *API) user(resp http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(req, "id"), 10, 16)
	if err != nil {
		respondWithError(resp, http.StatusBadRequest, err)
		return
	}

	user, err := a.registry.GetUser(auth.UserID(id))
	if err != nil {
		var notFound db.UserNotFoundError
		if errors.As(err, &notFound) {
			respondWithError(resp, http.StatusNotFound, err)
			return
		}
		respondWithError(resp, http.StatusInternalServerError, err)
		return
	}

	respondWithJSON(resp, user)
}

func (a *API) revocations(resp http.ResponseWriter, req *http.Request) {
	revocations, err := a.registry.Revocations()
	if err != nil {
		respondWithError(resp, http.StatusInternalServerError, err)
		return
	}

	respondWithJSON(resp, revocations)
}

func respondWithJSON(resp http.ResponseWriter, v interface{}) {
	err := json.NewEncoder(resp).Encode(v)
	if err != nil {
		log.Println(err)
	}
}

func respondWithError(resp http.ResponseWriter, statusCode int, err error) {
	resp.WriteHeader(statusCode)
	err = json.NewEncoder(resp).Encode(struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	})
	if err != nil {
		log.Println(err)
	}
}

func requestLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		remoteAddr := req.Header.Get("X-Real-IP")
		if remoteAddr == "" {
			remoteAddr = req.RemoteAddr
		}
		log.Println(strings.Split(remoteAddr, ":")[0], "requested", req.URL.String())

		h.ServeHTTP(resp, req)
	})
}
