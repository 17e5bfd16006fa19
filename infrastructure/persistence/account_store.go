package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/simdex/simdex/domain/account"
)

const usersCollection = "users"

// userDocument is the BSON shape of a stored account.
type userDocument struct {
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"hashed_password"`
	AccountType  string    `bson:"account_type"`
	CreatedAt    time.Time `bson:"created_at"`
}

// AccountStore implements account.AccountStore backed by MongoDB.
type AccountStore struct {
	users *mongo.Collection
}

// NewAccountStore creates an AccountStore and ensures the unique email index.
func NewAccountStore(ctx context.Context, db *mongo.Database) (AccountStore, error) {
	users := db.Collection(usersCollection)

	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return AccountStore{}, fmt.Errorf("create email index: %w", err)
	}

	return AccountStore{users: users}, nil
}

// Create inserts a new account. Returns account.ErrAccountExists when the
// email already has an account.
func (s AccountStore) Create(ctx context.Context, acct account.Account) error {
	doc := userDocument{
		Email:        acct.Email(),
		PasswordHash: acct.PasswordHash(),
		AccountType:  string(acct.AccountType()),
		CreatedAt:    acct.CreatedAt(),
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// FindByEmail looks up an account by email.
func (s AccountStore) FindByEmail(ctx context.Context, email string) (account.Account, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return account.Account{}, account.ErrAccountNotFound
		}
		return account.Account{}, fmt.Errorf("find account: %w", err)
	}

	return account.NewAccount(doc.Email, doc.PasswordHash, account.ParseType(doc.AccountType), doc.CreatedAt), nil
}
