package identity

import (
	"context"
	"fmt"
	"strings"

	"astrolab/internal/storage"
	"astrolab/pkg/model"
)

// Collection is the backing collection name for user records.
const Collection = "users"

// User is a stored account. The password hash never leaves this package.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`

	passwordHash string
	passwordAlgo string
}

// UserStore persists users in the document store's "users" collection.
type UserStore struct {
	store storage.Store
}

// NewUserStore creates the store and ensures the backing collection exists.
func NewUserStore(ctx context.Context, store storage.Store) (*UserStore, error) {
	if _, err := store.CreateCollection(ctx, Collection); err != nil {
		return nil, err
	}
	return &UserStore{store: store}, nil
}

func userFromDocument(doc model.Document) User {
	return User{
		ID:           doc.GetID(),
		Email:        doc.GetString("email"),
		FirstName:    doc.GetString("first_name"),
		LastName:     doc.GetString("last_name"),
		CreatedAt:    doc.GetString("created_at"),
		UpdatedAt:    doc.GetString("updated_at"),
		LastLogin:    doc.GetString("last_login"),
		passwordHash: doc.GetString("password"),
		passwordAlgo: doc.GetString("password_algo"),
	}
}

// Create persists a new user record. Emails are stored lowercased.
func (u *UserStore) Create(ctx context.Context, email, passwordHash, passwordAlgo, firstName, lastName, createdAt string) (User, error) {
	doc, err := u.store.Add(ctx, Collection, model.Document{
		"email":         strings.ToLower(email),
		"password":      passwordHash,
		"password_algo": passwordAlgo,
		"first_name":    firstName,
		"last_name":     lastName,
		"created_at":    createdAt,
	})
	if err != nil {
		return User{}, err
	}
	return userFromDocument(doc), nil
}

// GetByEmail finds a user by email, case-insensitive. Returns
// model.ErrNotFound when no account matches.
func (u *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	docs, err := u.store.Get(ctx, Collection)
	if err != nil {
		return User{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, doc := range docs {
		if strings.ToLower(doc.GetString("email")) == needle {
			return userFromDocument(doc), nil
		}
	}
	return User{}, fmt.Errorf("%w: user %q", model.ErrNotFound, email)
}

// GetByID finds a user by id.
func (u *UserStore) GetByID(ctx context.Context, id string) (User, error) {
	doc, err := u.store.GetOne(ctx, Collection, id)
	if err != nil {
		return User{}, err
	}
	return userFromDocument(doc), nil
}

// Update merges the given fields into the user record.
func (u *UserStore) Update(ctx context.Context, id string, fields model.Document) (User, error) {
	doc, err := u.store.Update(ctx, Collection, id, fields, false)
	if err != nil {
		return User{}, err
	}
	return userFromDocument(doc), nil
}
