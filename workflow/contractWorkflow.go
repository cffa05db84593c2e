package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var contractMilestoneVerbs = map[models.ContractDirection]string{
	models.ContractDirectionSales:       "Signed sales contract with",
	models.ContractDirectionProcurement: "Signed procurement contract with",
	models.ContractDirectionOutsourcing: "Outsourced to",
	models.ContractDirectionPartnership: "Partnered with",
}

func applyContract(tx *gorm.DB, c *models.Contract, today time.Time) ([]Effect, error) {
	tag, ok := contractRoleTags[c.Direction]
	if !ok {
		return nil, &models.DirectionError{Value: string(c.Direction)}
	}

	var effects []Effect
	note := fmt.Sprintf("contract %q, amount %s", c.Title, utils.FormatMoney(c.Amount))
	rel, err := ResolveRelationship(tx, c.CompanyId, c.Counterparty, tag, note, today)
	if err != nil {
		return nil, err
	}
	effects = append(effects, rel.Effect())

	switch c.Direction {
	case models.ContractDirectionSales:
		projectEffects, err := openDeliveryProject(tx, c, today)
		if err != nil {
			return nil, err
		}
		effects = append(effects, projectEffects...)
	case models.ContractDirectionProcurement:
		order, err := models.CreateProcurementOrderFromContract(tx, c, today)
		if err != nil {
			return nil, err
		}
		effects = append(effects, created(ModuleProcurementOrders, order.ID, order.Title))
	case models.ContractDirectionOutsourcing:
		staff, err := models.CreateContractorFromContract(tx, c, today)
		if err != nil {
			return nil, err
		}
		effects = append(effects, created(ModuleStaffMembers, staff.ID, staff.Name))
	case models.ContractDirectionPartnership:
		// the relationship is the only record
	}

	milestone := &models.Milestone{
		CompanyId:     c.CompanyId,
		Title:         fmt.Sprintf("%s %s, %s %s", contractMilestoneVerbs[c.Direction], c.Counterparty, utils.FormatMoney(c.Amount), c.Title),
		Category:      models.MilestoneCategoryBusiness,
		MilestoneDate: today,
		Status:        models.MilestoneStatusCompleted,
		Description:   contractMilestoneDescription(c),
		SourceType:    "contracts",
		SourceId:      c.ID,
	}
	if err := models.CreateMilestone(tx, milestone); err != nil {
		return nil, err
	}
	effects = append(effects, created(ModuleMilestones, milestone.ID, milestone.Title))
	return effects, nil
}

// contractMilestoneDescription prefers the contract terms and falls back to its category.
func contractMilestoneDescription(c *models.Contract) string {
	if terms := strings.TrimSpace(c.Terms); terms != "" {
		return terms
	}
	return strings.TrimSpace(c.Category)
}

func openDeliveryProject(tx *gorm.DB, c *models.Contract, today time.Time) ([]Effect, error) {
	start := utils.DateOrToday(c.StartDate, today)
	project := &models.DeliveryProject{
		CompanyId:  c.CompanyId,
		ContractId: c.ID,
		Name:       DeliveryProjectName(c.Counterparty, c.Title),
		Client:     c.Counterparty,
		Budget:     c.Amount,
		Spent:      decimal.Zero,
		StartDate:  &start,
		EndDate:    c.EndDate,
		Status:     models.DeliveryProjectStatusPlanning,
	}
	if err := models.CreateDeliveryProject(tx, project); err != nil {
		return nil, err
	}
	effects := []Effect{created(ModuleDeliveryProjects, project.ID, project.Name)}

	tasks, err := GenerateDeliveryTasks(tx, c.CompanyId, project.ID, &start, c.EndDate, today)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		effects = append(effects, created(ModuleDeliveryTasks, task.ID, task.Title))
	}
	project.Tasks = tasks
	return effects, nil
}

var contractTitleSuffixes = []string{"合同", "contract"}

// DeliveryProjectName is "[Delivery] {counterparty}-{title}" with a trailing
// contract word dropped from the title.
func DeliveryProjectName(counterparty string, title string) string {
	short := strings.TrimSpace(title)
	for _, suffix := range contractTitleSuffixes {
		if len(short) > len(suffix) && strings.EqualFold(short[len(short)-len(suffix):], suffix) {
			short = strings.TrimSpace(short[:len(short)-len(suffix)])
			break
		}
	}
	if short == "" {
		short = strings.TrimSpace(title)
	}
	return fmt.Sprintf("[Delivery] %s-%s", counterparty, short)
}
