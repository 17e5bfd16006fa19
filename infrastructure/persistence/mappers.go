package persistence

import "github.com/simdex/simdex/domain/account"

// APIKeyMapper converts between account.APIKey and APIKeyModel.
type APIKeyMapper struct{}

// ToModel converts a domain APIKey to its GORM model.
func (APIKeyMapper) ToModel(key account.APIKey) APIKeyModel {
	return APIKeyModel{
		APIKey:      key.Key(),
		UserEmail:   key.UserEmail(),
		AccountType: string(key.AccountType()),
	}
}

// ToDomain converts a GORM model to a domain APIKey.
func (APIKeyMapper) ToDomain(model APIKeyModel) account.APIKey {
	return account.NewAPIKey(model.APIKey, model.UserEmail, account.ParseType(model.AccountType))
}
