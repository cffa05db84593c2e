// cascade-replay runs the cascade again for a primary record that is already
// stored, e.g. after the original cascade failed and rolled back. Derived
// records are created again; the relationship is updated, never duplicated.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/mmdatafocus/ventures_backend/workflow"
)

func main() {
	ventureID := flag.String("venture-id", "", "Required: venture id (uuid)")
	kind := flag.String("kind", "", "Required: contract | transaction | staff")
	recordID := flag.Int("id", 0, "Required: id of the primary record")
	flag.Parse()

	if strings.TrimSpace(*ventureID) == "" || *recordID <= 0 {
		fmt.Fprintln(os.Stderr, "--venture-id and --id are required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetCompanyIdInContext(context.Background(), *ventureID)
	ctx = utils.SetUserNameInContext(ctx, "cascade-replay")
	engine := workflow.NewEngine(db, config.GetLogger())

	var (
		effects []workflow.Effect
		err     error
	)
	switch *kind {
	case models.CascadeContract:
		var c *models.Contract
		if c, err = models.GetContract(ctx, db, *ventureID, *recordID); err == nil {
			effects, err = engine.OnContractRecorded(ctx, c)
		}
	case models.CascadeTransaction:
		var t *models.LedgerTransaction
		if t, err = utils.FetchModel[models.LedgerTransaction](ctx, db, *ventureID, *recordID); err == nil {
			effects, err = engine.OnTransactionRecorded(ctx, t)
		}
	case models.CascadeStaff:
		var s *models.StaffMember
		if s, err = utils.FetchModel[models.StaffMember](ctx, db, *ventureID, *recordID); err == nil {
			effects, err = engine.OnStaffAdded(ctx, s)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown --kind %q: must be one of contract, transaction, staff\n", *kind)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(effects, "", "  ")
	fmt.Println(string(out))
}
