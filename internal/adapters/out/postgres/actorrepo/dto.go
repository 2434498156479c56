// Package actorrepo provides data transfer objects and mapping functions for
// the approved participant directory. It implements the repository pattern
// for the actor identity aggregate, handling the conversion between domain
// entities and database representations.
package actorrepo

import (
	"orderchain/internal/core/domain/model/identity"
)

// ActorDTO represents the database structure for persisting approved
// participant identities. The company code is the natural key; the private
// key never leaves this table except through the decrypt use cases.
type ActorDTO struct {
	CompanyCode   string `gorm:"type:varchar(64);primaryKey"`
	Org           string `gorm:"type:varchar(32);not null;index"`
	PublicKeyPEM  string `gorm:"type:text;not null"`
	PrivateKeyPEM string `gorm:"type:text;not null"`
	WalletID      string `gorm:"type:varchar(255);not null"`
}

// TableName overrides GORM's default naming to use "actors".
func (ActorDTO) TableName() string {
	return "actors"
}

func fromDomain(actor *identity.ActorIdentity) ActorDTO {
	return ActorDTO{
		CompanyCode:   actor.CompanyCode(),
		Org:           actor.Org().String(),
		PublicKeyPEM:  actor.PublicKeyPEM(),
		PrivateKeyPEM: actor.PrivateKeyPEM(),
		WalletID:      actor.WalletID(),
	}
}

func toDomain(dto ActorDTO) (*identity.ActorIdentity, error) {
	org, err := identity.OrgFromString(dto.Org)
	if err != nil {
		return nil, err
	}

	return identity.RestoreActorIdentity(dto.CompanyCode, org, dto.PublicKeyPEM, dto.PrivateKeyPEM, dto.WalletID)
}
