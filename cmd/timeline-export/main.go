package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/models/reports"
	"github.com/mmdatafocus/ventures_backend/utils"
)

func main() {
	ventureID := flag.String("venture-id", "", "Required: venture id (uuid)")
	fromStr := flag.String("from", "", "Optional: first milestone date (YYYY-MM-DD)")
	toStr := flag.String("to", "", "Optional: last milestone date (YYYY-MM-DD)")
	out := flag.String("out", "", "Optional: output file (default timeline-<venture>-<date>.xlsx)")
	flag.Parse()

	if strings.TrimSpace(*ventureID) == "" {
		fmt.Fprintln(os.Stderr, "--venture-id is required")
		os.Exit(1)
	}
	from, err := utils.ParseDate(*fromStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --from: %v\n", err)
		os.Exit(1)
	}
	to, err := utils.ParseDate(*toStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --to: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetCompanyIdInContext(context.Background(), *ventureID)
	report, err := reports.GetTimelineReport(ctx, db, *ventureID, models.MilestoneFilter{From: from, To: to})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build timeline: %v\n", err)
		os.Exit(1)
	}

	filename := *out
	if filename == "" {
		filename = reports.ExportFileName(*ventureID, time.Now())
	}
	if err := reports.SaveTimelineExcel(filename, report); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", filename, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d milestones to %s\n", report.Total, filename)
}
