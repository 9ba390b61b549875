package models

import (
	"github.com/google/uuid"

	"github.com/vetclinic/backend/internal/domain/identity"
)

// UserModel is the persistence model for a staff user
type UserModel struct {
	AggregateModel
	Username     string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string            `gorm:"type:varchar(200)"`
	PasswordHash string            `gorm:"type:varchar(100);not null"`
	DisplayName  string            `gorm:"type:varchar(200)"`
	Status       string            `gorm:"type:varchar(20);not null;default:'active'"`
	Notes        string            `gorm:"type:text"`
	Branches     []UserBranchModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// UserBranchModel is one entry of a user's allowed-branch set. A user
// with no rows here is unrestricted.
type UserBranchModel struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UserBranchModel) TableName() string {
	return "user_branches"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	branchIDs := make([]uuid.UUID, len(m.Branches))
	for i, b := range m.Branches {
		branchIDs[i] = b.BranchID
	}
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		DisplayName:       m.DisplayName,
		Status:            identity.UserStatus(m.Status),
		AllowedBranchIDs:  branchIDs,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Status = string(u.Status)
	m.Notes = u.Notes
	m.Branches = make([]UserBranchModel, len(u.AllowedBranchIDs))
	for i, branchID := range u.AllowedBranchIDs {
		m.Branches[i] = UserBranchModel{
			UserID:   u.GetID(),
			BranchID: branchID,
			Position: i,
		}
	}
}

// BranchModel is the persistence model for a clinic branch
type BranchModel struct {
	AggregateModel
	Name   string `gorm:"type:varchar(200);not null"`
	Code   string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Active bool   `gorm:"not null"`
	Notes  string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch
func (m *BranchModel) ToDomain() *identity.Branch {
	return &identity.Branch{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Code:              m.Code,
		Active:            m.Active,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Branch
func (m *BranchModel) FromDomain(b *identity.Branch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Code = b.Code
	m.Active = b.Active
	m.Notes = b.Notes
}
