// Package cardfile stores a card's credential on disk as JSON.
package cardfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sauerbraten/jsonfile"

	"github.com/sauerbraten/anonauth/pkg/auth"
)

type File struct {
	User   auth.UserID     `json:"user"`
	Door   string          `json:"door,omitempty"` // address of the issuing door
	Points auth.Credential `json:"points"`
}

func Read(path string) (*File, error) {
	var f File
	err := jsonfile.ParseFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("cardfile: reading %s: %w", path, err)
	}
	if len(f.Points) == 0 {
		return nil, fmt.Errorf("cardfile: %s contains no points", path)
	}
	for i, p := range f.Points {
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("cardfile: point %d in %s is incomplete", i, path)
		}
	}
	return &f, nil
}

// Write stores f at path, readable only by the owner. Existing files are not overwritten.
func Write(path string, f *File) error {
	buf, err := json.MarshalIndent(f, "", "\t")
	if err != nil {
		return fmt.Errorf("cardfile: encoding: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("cardfile: %w", err)
	}

	_, err = file.Write(append(buf, '\n'))
	if err != nil {
		file.Close()
		return fmt.Errorf("cardfile: writing %s: %w", path, err)
	}
	return file.Close()
}

// Card returns a card holding the file's credential.
func (f *File) Card() *auth.Card {
	return auth.NewCard(f.Points)
}
