package auth

import (
	"context"
	"errors"

	"github.com/andrebq/blogbox/journal"
)

type (
	journalIdentities struct {
		store *journal.Store
	}
)

// JournalIdentities keeps identities in the users table of a journal
func JournalIdentities(store *journal.Store) IdentityStore {
	return &journalIdentities{store: store}
}

func (j *journalIdentities) InsertIdentity(ctx context.Context, id Identity) (Identity, error) {
	u, err := j.store.InsertUser(ctx, journal.User{
		Username:     id.Username,
		Email:        id.Email,
		PasswordHash: string(id.PasswordHash),
	})
	if errors.Is(err, journal.UniqueViolation{}) {
		return Identity{}, ErrIdentityExists
	} else if err != nil {
		return Identity{}, err
	}
	return fromUser(u), nil
}

func (j *journalIdentities) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	u, err := j.store.FindUserByEmail(ctx, email)
	if errors.Is(err, journal.NotFound{Kind: "user"}) {
		return Identity{}, ErrIdentityNotFound
	} else if err != nil {
		return Identity{}, err
	}
	return fromUser(u), nil
}

func fromUser(u journal.User) Identity {
	return Identity{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: HashText(u.PasswordHash),
	}
}
