package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/middlewares"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/models/reports"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/shopspring/decimal"
)

func registerVentureRoutes(r *gin.Engine) {
	api := r.Group("/ventures", middlewares.AuthMiddleware())
	api.POST("", registerVentureHandler())
	api.GET("", listVenturesHandler())

	scoped := api.Group("/:id", middlewares.VentureScope())
	scoped.GET("", getVentureHandler())
	scoped.PATCH("", updateVentureHandler())
	scoped.POST("/transition", transitionVentureHandler())
	scoped.GET("/history", listHistoryHandler())
	scoped.POST("/contracts", createContractHandler())
	scoped.POST("/transactions", createTransactionHandler())
	scoped.POST("/staff", createStaffHandler())
	scoped.GET("/relationships", listRelationshipsHandler())
	scoped.GET("/relationships/:relationshipId", getRelationshipHandler())
	scoped.GET("/milestones", listMilestonesHandler())
	scoped.GET("/milestones/export", exportMilestonesHandler())
	scoped.GET("/events/:cascade/:trigger", eventStatusHandler())
	scoped.POST("/events/:cascade/:trigger/requeue", requeueEventHandler())
}

func cascadeEngine() *workflow.Engine {
	return workflow.NewEngine(config.GetDB(), config.GetLogger())
}

// errorStatus maps validation failures to 400. Anything unrecognised is a
// store or infrastructure failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInvalidInput),
		errors.Is(err, models.ErrInvalidDirection),
		errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errorStatus(err), gin.H{"error": err.Error()})
}

func registerVentureHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVenture
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		venture, err := models.RegisterVenture(c.Request.Context(), &input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, venture)
	}
}

func listVenturesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := middlewares.CtxValue(c.Request.Context())
		if claim == nil || !claim.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var filter models.VentureFilter
		if s := c.Query("status"); s != "" {
			status, err := models.ParseVentureStatus(s)
			if err != nil {
				abortWithError(c, err)
				return
			}
			filter.Status = &status
		}
		filter.OwnerId = c.Query("owner_id")
		filter.Name = c.Query("name")
		ventures, err := models.ListVentures(c.Request.Context(), filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ventures)
	}
}

func getVentureHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		venture, err := models.GetVenture(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, venture)
	}
}

func updateVentureHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVenture
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		venture, err := models.UpdateVenture(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, venture)
	}
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func transitionVentureHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		target, err := models.ParseVentureStatus(req.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}
		venture, err := models.TransitionVenture(c.Request.Context(), c.Param("id"), target)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if venture == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "venture not found"})
			return
		}
		c.JSON(http.StatusOK, venture)
	}
}

func listHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		histories, err := models.ListHistory(c.Request.Context(), config.GetDB(), c.Param("id"), c.Query("reference_type"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, histories)
	}
}

type contractRequest struct {
	Title        string          `json:"title" binding:"required"`
	Counterparty string          `json:"counterparty" binding:"required"`
	Category     string          `json:"category"`
	Direction    string          `json:"direction" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Terms        string          `json:"terms"`
	RiskNotes    string          `json:"risk_notes"`
	ReminderDate string          `json:"reminder_date"`
}

func (req contractRequest) toInput() (*models.NewContract, error) {
	direction, err := models.ParseContractDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	reminder, err := utils.ParseDate(req.ReminderDate)
	if err != nil {
		return nil, err
	}
	return &models.NewContract{
		Title:        req.Title,
		Counterparty: req.Counterparty,
		Category:     req.Category,
		Direction:    direction,
		Amount:       req.Amount,
		StartDate:    start,
		EndDate:      end,
		Terms:        req.Terms,
		RiskNotes:    req.RiskNotes,
		ReminderDate: reminder,
	}, nil
}

func createContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		input, err := req.toInput()
		if err != nil {
			abortWithError(c, err)
			return
		}
		contract, effects, err := cascadeEngine().RecordContract(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"contract": contract, "effects": effects})
	}
}

type transactionRequest struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Direction       string          `json:"direction" binding:"required"`
	Category        string          `json:"category"`
	Counterparty    string          `json:"counterparty"`
	TransactionDate string          `json:"transaction_date"`
}

func createTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		direction, err := models.ParseTransactionDirection(req.Direction)
		if err != nil {
			abortWithError(c, err)
			return
		}
		date, err := utils.ParseDate(req.TransactionDate)
		if err != nil {
			abortWithError(c, err)
			return
		}
		input := &models.NewLedgerTransaction{
			Description:     req.Description,
			Amount:          req.Amount,
			Direction:       direction,
			Category:        req.Category,
			Counterparty:    req.Counterparty,
			TransactionDate: date,
		}
		record, effects, err := cascadeEngine().RecordTransaction(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": record, "effects": effects})
	}
}

type staffRequest struct {
	Name           string          `json:"name" binding:"required"`
	Position       string          `json:"position"`
	Department     string          `json:"department"`
	EmploymentType string          `json:"employment_type"`
	Compensation   decimal.Decimal `json:"compensation"`
	JoinDate       string          `json:"join_date"`
}

func createStaffHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req staffRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
			return
		}
		employment, err := models.ParseEmploymentType(req.EmploymentType)
		if err != nil {
			abortWithError(c, err)
			return
		}
		joined, err := utils.ParseDate(req.JoinDate)
		if err != nil {
			abortWithError(c, err)
			return
		}
		input := &models.NewStaffMember{
			Name:           req.Name,
			Position:       req.Position,
			Department:     req.Department,
			EmploymentType: employment,
			Compensation:   req.Compensation,
			JoinDate:       joined,
		}
		staff, effects, err := cascadeEngine().RecordStaff(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"staff": staff, "effects": effects})
	}
}

func listRelationshipsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tag *models.RoleTag
		if t := c.Query("tag"); t != "" {
			rt := models.RoleTag(t)
			tag = &rt
		}
		relationships, err := models.ListRelationships(c.Request.Context(), config.GetDB(), c.Param("id"), tag)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, relationships)
	}
}

func getRelationshipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		relationshipId, err := strconv.Atoi(c.Param("relationshipId"))
		if err != nil {
			abortWithError(c, utils.ErrorRecordNotFound)
			return
		}
		relationship, err := models.GetRelationship(c.Request.Context(), config.GetDB(), c.Param("id"), relationshipId)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, relationship)
	}
}

func milestoneFilter(c *gin.Context) (models.MilestoneFilter, error) {
	var filter models.MilestoneFilter
	from, err := utils.ParseDate(c.Query("from"))
	if err != nil {
		return filter, err
	}
	to, err := utils.ParseDate(c.Query("to"))
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	if cat := c.Query("category"); cat != "" {
		category := models.MilestoneCategory(cat)
		filter.Category = &category
	}
	return filter, nil
}

func listMilestonesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := milestoneFilter(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		report, err := reports.GetTimelineReport(c.Request.Context(), config.GetDB(), c.Param("id"), filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func exportMilestonesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := milestoneFilter(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		companyId := c.Param("id")
		report, err := reports.GetTimelineReport(c.Request.Context(), config.GetDB(), companyId, filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+reports.ExportFileName(companyId, time.Now()))
		if err := reports.ExportTimelineExcel(c.Writer, report); err != nil {
			config.LogError(config.GetLogger(), "ventureHandlers.go", "exportMilestonesHandler", "write xlsx", companyId, err)
			_ = c.Error(err)
		}
	}
}

func eventKey(c *gin.Context) (string, int, error) {
	cascade := c.Param("cascade")
	switch cascade {
	case models.CascadeContract, models.CascadeTransaction, models.CascadeStaff:
	default:
		return "", 0, utils.ErrorRecordNotFound
	}
	trigger, err := strconv.Atoi(c.Param("trigger"))
	if err != nil || trigger <= 0 {
		return "", 0, utils.ErrorRecordNotFound
	}
	return cascade, trigger, nil
}

func eventStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cascade, trigger, err := eventKey(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		status, err := models.GetVentureEventStatus(c.Request.Context(), config.GetDB(), c.Param("id"), cascade, trigger)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func requeueEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cascade, trigger, err := eventKey(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		status, err := models.RequeueVentureEvent(c.Request.Context(), config.GetDB(), c.Param("id"), cascade, trigger)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
