package models

import (
	"log"

	"github.com/mmdatafocus/ventures_backend/config"
	"gorm.io/gorm"
)

func MigrateTable() {
	if err := MigrateTables(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}

func MigrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Venture{}, &History{},
		&Relationship{}, &RelationshipNote{},
		&Contract{}, &LedgerTransaction{}, &StaffMember{},
		&DeliveryProject{}, &DeliveryTask{}, &ProcurementOrder{}, &SalesInvoice{},
		&Milestone{},
		&VentureEventRecord{},
	)
}
