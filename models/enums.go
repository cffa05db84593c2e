package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmdatafocus/ventures_backend/utils"
)

type VentureStatus string

const (
	VentureStatusPending    VentureStatus = "pending"
	VentureStatusActive     VentureStatus = "active"
	VentureStatusSuspended  VentureStatus = "suspended"
	VentureStatusAcquired   VentureStatus = "acquired"
	VentureStatusPackaged   VentureStatus = "packaged"
	VentureStatusTerminated VentureStatus = "terminated"
)

var ventureStatuses = map[string]VentureStatus{
	"pending":    VentureStatusPending,
	"active":     VentureStatusActive,
	"suspended":  VentureStatusSuspended,
	"acquired":   VentureStatusAcquired,
	"packaged":   VentureStatusPackaged,
	"terminated": VentureStatusTerminated,
}

// AllVentureStatuses in lifecycle order.
var AllVentureStatuses = []VentureStatus{
	VentureStatusPending,
	VentureStatusActive,
	VentureStatusSuspended,
	VentureStatusAcquired,
	VentureStatusPackaged,
	VentureStatusTerminated,
}

func ParseVentureStatus(s string) (VentureStatus, error) {
	v, ok := ventureStatuses[strings.TrimSpace(s)]
	if !ok {
		return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidStatus, s, joinKeys(ventureStatuses))
	}
	return v, nil
}

func (s VentureStatus) IsValid() bool {
	_, ok := ventureStatuses[string(s)]
	return ok
}

func (s *VentureStatus) UnmarshalText(b []byte) error {
	v, err := ParseVentureStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ContractDirection is the closed set of counterparty roles a contract can carry.
// Values outside the set can only come from unchecked input and are rejected by
// ParseContractDirection before any cascade starts.
type ContractDirection string

const (
	ContractDirectionSales       ContractDirection = "sales"
	ContractDirectionProcurement ContractDirection = "procurement"
	ContractDirectionOutsourcing ContractDirection = "outsourcing"
	ContractDirectionPartnership ContractDirection = "partnership"
)

var contractDirections = map[string]ContractDirection{
	"sales":       ContractDirectionSales,
	"procurement": ContractDirectionProcurement,
	"outsourcing": ContractDirectionOutsourcing,
	"partnership": ContractDirectionPartnership,
}

// LegalContractDirections in declaration order, used in error messages.
var LegalContractDirections = []ContractDirection{
	ContractDirectionSales,
	ContractDirectionProcurement,
	ContractDirectionOutsourcing,
	ContractDirectionPartnership,
}

func ParseContractDirection(s string) (ContractDirection, error) {
	v, ok := contractDirections[s]
	if !ok {
		return "", &DirectionError{Value: s}
	}
	return v, nil
}

func (d *ContractDirection) UnmarshalText(b []byte) error {
	v, err := ParseContractDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type TransactionDirection string

const (
	TransactionDirectionIncome  TransactionDirection = "income"
	TransactionDirectionExpense TransactionDirection = "expense"
)

func ParseTransactionDirection(s string) (TransactionDirection, error) {
	switch TransactionDirection(s) {
	case TransactionDirectionIncome, TransactionDirectionExpense:
		return TransactionDirection(s), nil
	}
	return "", utils.InputErrorf("invalid transaction direction %q: must be one of income, expense", s)
}

func (d *TransactionDirection) UnmarshalText(b []byte) error {
	v, err := ParseTransactionDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// RoleTag is one entry of a relationship's tag set.
type RoleTag string

const (
	RoleTagClient             RoleTag = "client"
	RoleTagSupplier           RoleTag = "supplier"
	RoleTagOutsourcingPartner RoleTag = "outsourcing-partner"
	RoleTagPartner            RoleTag = "partner"
)

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusTerminated ContractStatus = "terminated"
)

type DeliveryProjectStatus string

const (
	DeliveryProjectStatusPlanning   DeliveryProjectStatus = "planning"
	DeliveryProjectStatusInProgress DeliveryProjectStatus = "in_progress"
	DeliveryProjectStatusCompleted  DeliveryProjectStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type ProcurementOrderStatus string

const (
	ProcurementOrderStatusPending   ProcurementOrderStatus = "pending"
	ProcurementOrderStatusOrdered   ProcurementOrderStatus = "ordered"
	ProcurementOrderStatusReceived  ProcurementOrderStatus = "received"
	ProcurementOrderStatusCancelled ProcurementOrderStatus = "cancelled"
)

type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

type EmploymentType string

const (
	EmploymentTypeFullTime   EmploymentType = "full_time"
	EmploymentTypePartTime   EmploymentType = "part_time"
	EmploymentTypeIntern     EmploymentType = "intern"
	EmploymentTypeContractor EmploymentType = "contractor"
)

var employmentTypeLabels = map[EmploymentType]string{
	EmploymentTypeFullTime:   "Full-time",
	EmploymentTypePartTime:   "Part-time",
	EmploymentTypeIntern:     "Intern",
	EmploymentTypeContractor: "Contractor",
}

func ParseEmploymentType(s string) (EmploymentType, error) {
	t := EmploymentType(strings.TrimSpace(s))
	if t == "" {
		return EmploymentTypeFullTime, nil
	}
	if _, ok := employmentTypeLabels[t]; !ok {
		return "", utils.InputErrorf("invalid employment type %q: must be one of full_time, part_time, intern, contractor", s)
	}
	return t, nil
}

func (t *EmploymentType) UnmarshalText(b []byte) error {
	v, err := ParseEmploymentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Label is the human form used in milestone titles.
func (t EmploymentType) Label() string {
	if l, ok := employmentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

type SalesInvoiceStatus string

const (
	SalesInvoiceStatusDraft     SalesInvoiceStatus = "draft"
	SalesInvoiceStatusConfirmed SalesInvoiceStatus = "confirmed"
	SalesInvoiceStatusPaid      SalesInvoiceStatus = "paid"
	SalesInvoiceStatusVoid      SalesInvoiceStatus = "void"
)

type MilestoneCategory string

const (
	MilestoneCategoryBusiness MilestoneCategory = "business"
	MilestoneCategoryFinance  MilestoneCategory = "finance"
	MilestoneCategoryTeam     MilestoneCategory = "team"
)

type MilestoneStatus string

const (
	MilestoneStatusPlanned   MilestoneStatus = "planned"
	MilestoneStatusCompleted MilestoneStatus = "completed"
)

func joinKeys[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
