package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

const mysqlErrDuplicateEntry = 1062

// Relationship is a counterparty of a venture. At most one row exists per
// (company_id, name); workflow.ResolveRelationship is the only writer and the
// unique index backs it up when two writers race.
type Relationship struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	CompanyId       string              `gorm:"size:36;uniqueIndex:idx_relationship_name;not null" json:"company_id"`
	Name            string              `gorm:"size:255;uniqueIndex:idx_relationship_name;not null" json:"name"`
	Phone           string              `gorm:"size:50" json:"phone"`
	Email           string              `gorm:"size:255" json:"email"`
	Company         string              `gorm:"size:255" json:"company"`
	Tags            []RoleTag           `gorm:"type:text;serializer:json" json:"tags"`
	Notes           []*RelationshipNote `gorm:"foreignKey:RelationshipId" json:"notes,omitempty"`
	LastContactDate *time.Time          `json:"last_contact_date"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// RelationshipNote is one entry of a relationship's interaction log.
type RelationshipNote struct {
	ID             int       `gorm:"primary_key" json:"id"`
	CompanyId      string    `gorm:"size:36;index;not null" json:"company_id"`
	RelationshipId int       `gorm:"index;not null" json:"relationship_id"`
	Line           string    `gorm:"type:text;not null" json:"line"`
	LoggedAt       time.Time `gorm:"not null" json:"logged_at"`
}

func (r Relationship) GetCompanyId() string {
	return r.CompanyId
}

func (r Relationship) HasTag(tag RoleTag) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FindRelationshipByName is an exact-match lookup; returns (nil, nil) when absent.
func FindRelationshipByName(tx *gorm.DB, companyId string, name string) (*Relationship, error) {
	var rel Relationship
	err := tx.Where("company_id = ? AND name = ?", companyId, name).Order("id ASC").First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// InsertRelationship creates rel inside a savepoint so a unique-key conflict
// leaves the surrounding transaction usable. Returns created=false with a nil
// error when another writer inserted the same name first.
func InsertRelationship(tx *gorm.DB, rel *Relationship) (created bool, err error) {
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Omit("Notes").Create(rel).Error
	})
	if err == nil {
		return true, nil
	}
	if IsDuplicateKey(err) {
		return false, nil
	}
	return false, err
}

// IsDuplicateKey reports a unique-key violation from the translated gorm
// error, the raw MySQL driver error, or SQLite's constraint message.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func AppendRelationshipNote(tx *gorm.DB, rel *Relationship, line string, at time.Time) error {
	if line == "" {
		return nil
	}
	note := RelationshipNote{
		CompanyId:      rel.CompanyId,
		RelationshipId: rel.ID,
		Line:           line,
		LoggedAt:       at,
	}
	if err := tx.Create(&note).Error; err != nil {
		return err
	}
	rel.Notes = append(rel.Notes, &note)
	return nil
}

func ListRelationships(ctx context.Context, db *gorm.DB, companyId string, tag *RoleTag) ([]*Relationship, error) {
	all, err := utils.FetchAllModels[Relationship](ctx, db, companyId, "name ASC")
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return all, nil
	}
	results := make([]*Relationship, 0, len(all))
	for _, r := range all {
		if r.HasTag(*tag) {
			results = append(results, r)
		}
	}
	return results, nil
}

// GetRelationship loads one relationship with its note log in logging order.
func GetRelationship(ctx context.Context, db *gorm.DB, companyId string, id int) (*Relationship, error) {
	var rel Relationship
	err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Preload("Notes", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		First(&rel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}
