package intake

import (
	"fmt"

	"github.com/samber/lo"
)

// Stored column names shared by both tables, and the payload keys that are
// not part of a table mapping.
const (
	ColIntakeID       = "Intake ID"
	ColIntakeName     = "Intake Name"
	ColIntakeComments = "Intake Comments"
	ColIntakeTags     = "Intake Tags"
	ColStatus         = "Status"
	ColAttachment     = "Attachment"
	ColDate           = "Date"
	ColApprovedDate   = "Approved Date"

	KeyIntakeID     = "intakeId"
	KeyApprovedDate = "approvedDate"
	KeyStatus       = "status"
	KeyAttachment   = "attachment"
)

const (
	tableIntakes = "jrm"
	tableMetrics = "metrics"
)

// Field pairs a stored column with its JSON payload key.
type Field struct {
	Column string
	Key    string
}

// Table is an ordered, bidirectional column/key mapping. Both lookup
// directions are derived from the same field list.
type Table struct {
	fields   []Field
	byColumn map[string]Field
	byKey    map[string]Field
}

func newTable(fields ...Field) Table {
	t := Table{
		fields:   fields,
		byColumn: lo.KeyBy(fields, func(f Field) string { return f.Column }),
		byKey:    lo.KeyBy(fields, func(f Field) string { return f.Key }),
	}
	if len(t.byColumn) != len(fields) || len(t.byKey) != len(fields) {
		panic(fmt.Sprintf("intake: duplicate column or key in %v", fields))
	}
	return t
}

// Fields returns the mapping in storage order.
func (t Table) Fields() []Field { return append([]Field(nil), t.fields...) }

// Columns returns the column names in storage order.
func (t Table) Columns() []string {
	return lo.Map(t.fields, func(f Field, _ int) string { return f.Column })
}

// Keys returns the payload keys in storage order.
func (t Table) Keys() []string {
	return lo.Map(t.fields, func(f Field, _ int) string { return f.Key })
}

// KeyFor returns the payload key stored in column.
func (t Table) KeyFor(column string) (string, bool) {
	f, ok := t.byColumn[column]
	return f.Key, ok
}

// ColumnFor returns the column holding payload key.
func (t Table) ColumnFor(key string) (string, bool) {
	f, ok := t.byKey[key]
	return f.Column, ok
}

// Except returns the fields whose column is not listed.
func (t Table) Except(columns ...string) []Field {
	return lo.Reject(t.fields, func(f Field, _ int) bool { return lo.Contains(columns, f.Column) })
}

// IntakeFields maps every jrm column, Intake ID first.
var IntakeFields = newTable(
	Field{ColIntakeID, KeyIntakeID},
	Field{ColIntakeName, "intakeName"},
	Field{ColIntakeComments, "intakeComments"},
	Field{ColIntakeTags, "intakeTags"},
	Field{ColStatus, KeyStatus},
	Field{ColAttachment, KeyAttachment},
	Field{ColDate, "date"},
	Field{ColApprovedDate, KeyApprovedDate},
)

// MetricFields maps the 24 mutable metrics columns in insert order. The
// naming is irregular ("%" becomes "Percent", "/" and "-" are dropped), so
// every pair is spelled out.
var MetricFields = newTable(
	Field{ColIntakeName, "intakeName"},
	Field{"Total Ongoing Costs", "totalOngoingCosts"},
	Field{"LOB Sub-Total", "lobSubTotal"},
	Field{"Contingency", "contingency"},

	Field{"ET-BA Total Effort Days", "etBATotalEffortDays"},
	Field{"ET-BA TC", "etBATC"},
	Field{"ET-BA E%", "etBAEPercent"},
	Field{"ET-BA C%", "etBACPercent"},

	Field{"ET-Dev Total Effort Days", "etDevTotalEffortDays"},
	Field{"ET-Dev TC", "etDevTC"},
	Field{"ET-Dev E%", "etDevEPercent"},
	Field{"ET-Dev C%", "etDevCPercent"},

	Field{"ET-QA Total Effort Days", "etQATotalEffortDays"},
	Field{"ET-QA TC", "etQATC"},
	Field{"ET-QA E%", "etQAEPercent"},
	Field{"ET-QA C%", "etQACPercent"},

	Field{"AO/TO Total Effort Days", "aotoTotalEffortDays"},
	Field{"AO/TO TC", "aotoTC"},
	Field{"AO/TO E%", "aotoEPercent"},
	Field{"AO/TO C%", "aotoCPercent"},

	Field{"PMO Total Effort Days", "pmoTotalEffortDays"},
	Field{"PMO TC", "pmoTC"},
	Field{"PMO E%", "pmoEPercent"},
	Field{"PMO C%", "pmoCPercent"},
)
