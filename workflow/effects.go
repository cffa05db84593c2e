package workflow

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

const (
	ModuleRelationships     = "relationships"
	ModuleDeliveryProjects  = "delivery_projects"
	ModuleDeliveryTasks     = "delivery_tasks"
	ModuleProcurementOrders = "procurement_orders"
	ModuleStaffMembers      = "staff_members"
	ModuleSalesInvoices     = "sales_invoices"
	ModuleMilestones        = "milestones"
)

// Effect describes one secondary record a cascade created or updated.
type Effect struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	ID      int    `json:"id"`
	Summary string `json:"summary"`
}

func created(module string, id int, summary string) Effect {
	return Effect{Module: module, Action: ActionCreated, ID: id, Summary: summary}
}
