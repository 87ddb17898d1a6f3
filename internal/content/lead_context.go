package content

import (
	"strconv"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

// LeadContext builds the substitution values for one lead. It is evaluated at
// send time so edits to the lead between scheduling and dispatch are honored.
// Fields the lead does not have are left out, never set to "".
func LeadContext(l *entity.Lead) map[string]string {
	ctx := make(map[string]string, 12)
	set := func(k, v string) {
		if v != "" {
			ctx[k] = v
		}
	}

	set("name", l.DisplayName())
	set("contact_name", l.ContactName)
	set("email", l.Email)
	set("phone", l.Phone)
	set("source", l.Source)
	set("location", l.Location)
	set("country", l.Country)
	set("interest", l.Interest)
	set("company", l.Company)
	set("needs", l.Needs)
	set("office", l.Office)
	set("jurisdiction", l.Jurisdiction)
	if l.EmployeeCount > 0 {
		ctx["employee_count"] = strconv.Itoa(l.EmployeeCount)
	}
	return ctx
}
