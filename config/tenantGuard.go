package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mmdatafocus/ventures_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const companyColumn = "company_id"

// TenantGuardPlugin keeps every statement inside the venture named by the
// request context:
//   - query/row/update/delete get `company_id = ?` appended when the model has the column
//     and the statement does not already filter on it;
//   - create rejects rows whose company_id differs from the context's venture, so a
//     cascade can never write a derived record owned by another venture.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include company_id manually.
// - Admin/internal bypass is explicit via context flags.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("tenant_guard:create", tenantOwnershipCallback); err != nil {
		return err
	}
	return nil
}

// guardedCompany returns the context's company id and the model's company_id field,
// or empty values when the statement is out of scope for the guard.
func guardedCompany(db *gorm.DB) (string, *schema.Field) {
	if db == nil || db.Statement == nil || db.Statement.Schema == nil {
		return "", nil
	}
	ctx := db.Statement.Context
	if ctx == nil || shouldBypassTenantScope(ctx) {
		return "", nil
	}
	companyID := companyIdFromContext(ctx)
	if companyID == "" {
		return "", nil
	}
	field := db.Statement.Schema.LookUpField(companyColumn)
	if field == nil {
		return "", nil
	}
	return companyID, field
}

func tenantScopeCallback(db *gorm.DB) {
	companyID, field := guardedCompany(db)
	if field == nil {
		return
	}
	// Don't duplicate an explicit tenant filter.
	if whereHasCompanyID(db.Statement.Clauses["WHERE"]) {
		return
	}
	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: companyColumn},
				Value:  companyID,
			},
		},
	})
}

func tenantOwnershipCallback(db *gorm.DB) {
	companyID, field := guardedCompany(db)
	if field == nil {
		return
	}
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			checkRowOwner(db, field, reflect.Indirect(rv.Index(i)), companyID)
		}
	case reflect.Struct:
		checkRowOwner(db, field, rv, companyID)
	}
}

func checkRowOwner(db *gorm.DB, field *schema.Field, row reflect.Value, companyID string) {
	v, zero := field.ValueOf(db.Statement.Context, row)
	if zero {
		return
	}
	if owner := fmt.Sprint(v); owner != companyID {
		_ = db.AddError(fmt.Errorf("tenant guard: %s row owned by %s cannot be written in scope of %s",
			db.Statement.Table, owner, companyID))
	}
}

func companyIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyCompanyId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipTenantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasCompanyID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasCompanyID(e) {
			return true
		}
	}
	return false
}

func exprHasCompanyID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsCompanyID(v.Column)
	case clause.Neq:
		return colIsCompanyID(v.Column)
	case clause.IN:
		return colIsCompanyID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasCompanyID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasCompanyID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), companyColumn)
	default:
		return false
	}
}

func colIsCompanyID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, companyColumn)
	case clause.Column:
		return strings.EqualFold(c.Name, companyColumn)
	default:
		return false
	}
}
