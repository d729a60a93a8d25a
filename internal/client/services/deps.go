package services

import (
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
)

// SessionSource is satisfied by *session.Store.
type SessionSource interface {
	Current() *models.Session
	Now() time.Time
}

// Cipher protects the sensitive profile fields; *cryptox.FieldCipher
// implements it.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

// authorize checks action against the current session and returns it.
func authorize(src SessionSource, action gate.Action, target models.ID) (*models.Session, error) {
	s := src.Current()
	if err := gate.Authorize(s, action, target, src.Now()); err != nil {
		return nil, err
	}
	return s, nil
}
