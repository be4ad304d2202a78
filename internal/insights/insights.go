// Package insights summarizes the associate population and builds the
// per-associate insight card.
package insights

import (
	"sort"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/shopspring/decimal"
)

// Count is one bucket of a breakdown.
type Count struct {
	Value string
	Count int
}

// Breakdown is a titled list of buckets, largest first.
type Breakdown struct {
	Title  string
	Counts []Count
}

// Total sums the buckets.
func (b Breakdown) Total() int {
	total := 0
	for _, c := range b.Counts {
		total += c.Count
	}
	return total
}

// Summary holds the population breakdowns.
type Summary struct {
	Departments        Breakdown
	Genders            Breakdown
	Recruitment        Breakdown
	Locations          Breakdown
	TerminationReasons Breakdown
	// GenderByDepartment is keyed by department, in department order.
	GenderByDepartment []Breakdown
	Total              int
	Active             int
}

// Summarize builds the breakdowns. Records missing a field are left out of
// that field's breakdown. Termination reasons only count records whose
// status is present and not active.
func Summarize(records []model.Record) *Summary {
	s := &Summary{
		Total:              len(records),
		Departments:        count("Associates per Department", records, textOf(model.FieldDepartment)),
		Genders:            count("Gender Distribution", records, textOf(model.FieldGender)),
		Recruitment:        count("Recruitment Sources", records, textOf(model.FieldRecruitment)),
		Locations:          count("Associates by Country and State", records, location),
		TerminationReasons: count("Termination Reasons", leavers(records), textOf(model.FieldTerminationReason)),
	}

	for _, r := range records {
		if r.IsActive() {
			s.Active++
		}
	}

	byDept := make(map[string][]model.Record)
	for _, r := range records {
		if dept, ok := textOf(model.FieldDepartment)(r); ok {
			byDept[dept] = append(byDept[dept], r)
		}
	}
	for _, c := range s.Departments.Counts {
		s.GenderByDepartment = append(s.GenderByDepartment,
			count(c.Value, byDept[c.Value], textOf(model.FieldGender)))
	}

	return s
}

func leavers(records []model.Record) []model.Record {
	var out []model.Record
	for _, r := range records {
		if _, ok := r.Status(); ok && !r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

func textOf(field string) func(model.Record) (string, bool) {
	return func(r model.Record) (string, bool) {
		v, ok := r.Text(field)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
}

// location renders "Country / State", falling back to whichever is present.
func location(r model.Record) (string, bool) {
	country, hasCountry := textOf(model.FieldCountry)(r)
	state, hasState := textOf(model.FieldState)(r)
	switch {
	case hasCountry && hasState:
		return country + " / " + state, true
	case hasCountry:
		return country, true
	case hasState:
		return state, true
	default:
		return "", false
	}
}

func count(title string, records []model.Record, key func(model.Record) (string, bool)) Breakdown {
	tally := make(map[string]int)
	for _, r := range records {
		if v, ok := key(r); ok {
			tally[v]++
		}
	}

	counts := make([]Count, 0, len(tally))
	for v, n := range tally {
		counts = append(counts, Count{Value: v, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})

	return Breakdown{Title: title, Counts: counts}
}

// Field is one labeled line of an insight card.
type Field struct {
	Label string
	Value string
}

// Card is the insight view of one associate.
type Card struct {
	Name   string
	Fields []Field
}

// FindByName returns the first record whose name matches, ignoring case.
func FindByName(records []model.Record, name string) (model.Record, bool) {
	name = strings.TrimSpace(name)
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.Name()), name) {
			return r, true
		}
	}
	return nil, false
}

// NewCard builds the insight card for a record. The termination reason is
// shown only when the status is present and not active.
func NewCard(r model.Record) *Card {
	card := &Card{Name: r.Name()}
	add := func(label, value string) {
		if value == "" {
			value = "-"
		}
		card.Fields = append(card.Fields, Field{Label: label, Value: value})
	}
	text := func(field string) string {
		v, _ := textOf(field)(r)
		return v
	}

	status, hasStatus := r.Status()
	loc, _ := location(r)

	add("Associate ID", text(model.FieldAssociateID))
	add("Department", text(model.FieldDepartment))
	add("Manager", text(model.FieldManagerName))
	add("Location", loc)
	add("Employment Status", strings.TrimSpace(status))
	add("Recruitment", text(model.FieldRecruitment))
	add("Performance Score", text(model.FieldPerformanceScore))
	add("Engagement Score", text(model.FieldEngagementScore))
	add("Employee Satisfaction", text(model.FieldEmployeeSatisfaction))
	add("Salary", formatMoney(r))
	add("Special Project", text(model.FieldSpecialProject))
	if hasStatus && !r.IsActive() {
		add("Termination Reason", text(model.FieldTerminationReason))
	}

	return card
}

func formatMoney(r model.Record) string {
	if v, ok := r.Float(model.FieldSalary); ok {
		return decimal.NewFromFloat(v).StringFixed(2)
	}
	v, _ := textOf(model.FieldSalary)(r)
	return v
}
