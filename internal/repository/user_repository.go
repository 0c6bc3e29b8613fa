package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
)

// UserRepository manages dashboard accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	store docstore.Store
}

// NewUserRepository instantiates repository.
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	doc, err := docstore.Encode(user)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, docstore.CollectionUsers, doc)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	user.ID = id
	return &user, nil
}

// GetByEmail returns docstore.ErrNotFound when no account matches.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	recs, err := r.store.GetFiltered(ctx, docstore.CollectionUsers, docstore.Query{
		Where: []docstore.Predicate{{Field: "email", Op: docstore.OpEq, Value: strings.ToLower(strings.TrimSpace(email))}},
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, docstore.ErrNotFound
	}
	var user domain.User
	if err := docstore.Decode(recs[0].Data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", recs[0].Key, err)
	}
	user.ID = recs[0].Key
	return &user, nil
}
