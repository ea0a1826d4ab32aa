package client

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

// Card connects a card to a door.
type Card struct {
	*conn
	card *auth.Card
}

func DialCard(addr string, card *auth.Card) (*Card, error) {
	c, err := dial(addr)
	if err != nil {
		return nil, err
	}
	return &Card{conn: c, card: card}, nil
}

// Authenticate runs one exchange with the door. Denials, whether decided by the card
// (revoked, foreign door) or by the door, are reported as false with a nil error.
func (c *Card) Authenticate() (bool, error) {
	cmd, args, err := c.request(protocol.ReqBcast)
	if err != nil {
		return false, err
	}
	switch cmd {
	case protocol.Bcast:
	case protocol.FailAuth:
		return false, &FailedError{Command: cmd, Reason: args}
	default:
		return false, UnexpectedReplyError(cmd)
	}

	broadcast, err := hex.DecodeString(args)
	if err != nil {
		return false, fmt.Errorf("client: decoding broadcast: %w", err)
	}

	response, err := c.card.Authenticate(broadcast)
	if auth.Denied(err) {
		log.Printf("card refused to answer: %v", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	cmd, _, err = c.request("%s %s", protocol.Resp, hex.EncodeToString(response))
	if err != nil {
		return false, err
	}
	switch cmd {
	case protocol.SuccAuth:
		return true, nil
	case protocol.FailAuth:
		return false, nil
	default:
		return false, UnexpectedReplyError(cmd)
	}
}
