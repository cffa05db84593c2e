package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

type ResolvedRelationship struct {
	Action       string               `json:"action"`
	Relationship *models.Relationship `json:"relationship"`
}

func (r ResolvedRelationship) Effect() Effect {
	return Effect{
		Module:  ModuleRelationships,
		Action:  r.Action,
		ID:      r.Relationship.ID,
		Summary: r.Relationship.Name,
	}
}

var contractRoleTags = map[models.ContractDirection]models.RoleTag{
	models.ContractDirectionSales:       models.RoleTagClient,
	models.ContractDirectionProcurement: models.RoleTagSupplier,
	models.ContractDirectionOutsourcing: models.RoleTagOutsourcingPartner,
	models.ContractDirectionPartnership: models.RoleTagPartner,
}

// ResolveRelationship finds the venture's relationship named exactly name and
// logs noteLine on it, or creates it tagged with tag. Every cascade touching a
// counterparty goes through here.
//
// The tag set is only written at creation. A counterparty seen later under
// another role keeps its original tags.
func ResolveRelationship(tx *gorm.DB, companyId string, name string, tag models.RoleTag, noteLine string, today time.Time) (*ResolvedRelationship, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.InputErrorf("relationship name is required")
	}

	existing, err := models.FindRelationshipByName(tx, companyId, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		rel := &models.Relationship{
			CompanyId:       companyId,
			Name:            name,
			Company:         name,
			Tags:            []models.RoleTag{tag},
			LastContactDate: &today,
		}
		ok, err := models.InsertRelationship(tx, rel)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := models.AppendRelationshipNote(tx, rel, noteLine, today); err != nil {
				return nil, err
			}
			return &ResolvedRelationship{Action: ActionCreated, Relationship: rel}, nil
		}
		// lost the insert race, the winner's row is updated instead
		existing, err = models.FindRelationshipByName(tx, companyId, name)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("relationship %q conflicted but could not be read back", name)
		}
	}

	if err := tx.Model(existing).Update("last_contact_date", today).Error; err != nil {
		return nil, err
	}
	existing.LastContactDate = &today
	if err := models.AppendRelationshipNote(tx, existing, noteLine, today); err != nil {
		return nil, err
	}
	return &ResolvedRelationship{Action: ActionUpdated, Relationship: existing}, nil
}
