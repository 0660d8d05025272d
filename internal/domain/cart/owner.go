package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidOwner indicates an owner with no usable identity.
var ErrInvalidOwner = errors.New("cart: owner must be a user id or a session id")

type OwnerKind string

const (
	OwnerKindUser    OwnerKind = "user"
	OwnerKindSession OwnerKind = "session"
)

// Owner is the tagged either-or identity of a cart: a logged-in user or an
// anonymous session. Constructing one through UserOwner/SessionOwner rules
// out the "both set" and "neither set" states the nullable columns would
// otherwise allow.
type Owner struct {
	kind      OwnerKind
	userID    uuid.UUID
	sessionID string
}

func UserOwner(userID uuid.UUID) Owner {
	return Owner{kind: OwnerKindUser, userID: userID}
}

func SessionOwner(sessionID string) Owner {
	return Owner{kind: OwnerKindSession, sessionID: strings.TrimSpace(sessionID)}
}

func (o Owner) Kind() OwnerKind { return o.kind }

func (o Owner) UserID() (uuid.UUID, bool) {
	if o.kind != OwnerKindUser {
		return uuid.Nil, false
	}
	return o.userID, true
}

func (o Owner) SessionID() (string, bool) {
	if o.kind != OwnerKindSession {
		return "", false
	}
	return o.sessionID, true
}

func (o Owner) Validate() error {
	switch o.kind {
	case OwnerKindUser:
		if o.userID == uuid.Nil {
			return ErrInvalidOwner
		}
	case OwnerKindSession:
		if o.sessionID == "" {
			return ErrInvalidOwner
		}
	default:
		return ErrInvalidOwner
	}
	return nil
}

func (o Owner) String() string {
	switch o.kind {
	case OwnerKindUser:
		return fmt.Sprintf("user:%s", o.userID)
	case OwnerKindSession:
		return fmt.Sprintf("session:%s", o.sessionID)
	default:
		return "owner:unset"
	}
}
