// Package intake implements the intake (jrm) and metrics tables: the
// column/key mapping, id normalization and every store operation the HTTP
// handlers expose.
//
// Intake writes are single statements and take ids verbatim. Metric create
// and edit normalize the id and run their checks and write in one
// transaction; the Approved Date propagation onto the intake runs after
// commit so that its failure never undoes the metric write.
package intake

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"jrm-intake-api/internal/logx"
)

var storeLogger = logx.GetScope("intake")

// Row is one stored row keyed by column name.
type Row map[string]any

// Store runs intake and metric operations over one shared driver.
type Store struct {
	drv     *entsql.Driver
	dialect string
}

// NewStore wraps an open driver. The driver is owned by the caller.
func NewStore(drv *entsql.Driver) *Store {
	return &Store{drv: drv, dialect: drv.Dialect()}
}

// MetricCreated describes a committed metric insert.
type MetricCreated struct {
	IntakeID     string
	RowID        int64
	ApprovedDate any
	// PropagationErr is set when the metric was stored but the intake's
	// Approved Date could not be updated.
	PropagationErr error
}

// MetricEdited describes a committed metric update.
type MetricEdited struct {
	IntakeID        string
	Changes         int64
	ApprovedDateSet bool
	ApprovedDate    any
	PropagationErr  error
}

// Ping checks that the store answers queries.
func (s *Store) Ping(ctx context.Context) error {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, "SELECT 1", []any{}, &rows); err != nil {
		return err
	}
	return rows.Close()
}

// ListIntakes returns every jrm row.
func (s *Store) ListIntakes(ctx context.Context) ([]Row, error) {
	return s.selectAll(ctx, s.drv, tableIntakes)
}

// ListMetrics returns every metrics row.
func (s *Store) ListMetrics(ctx context.Context) ([]Row, error) {
	return s.selectAll(ctx, s.drv, tableMetrics)
}

// GetIntake returns the intake stored under id exactly as given.
func (s *Store) GetIntake(ctx context.Context, id string) (Row, error) {
	row, err := s.selectOne(ctx, s.drv, tableIntakes, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, newError(ErrIntakeNotFound, "Intake ID %s does not exist", id)
	}
	return row, nil
}

// CreateIntake inserts a jrm row from the eight intake keys; absent keys
// are stored as NULL. A numeric intakeId is stored in its text form. It
// returns the new row id.
func (s *Store) CreateIntake(ctx context.Context, p Payload) (int64, error) {
	id := IDString(p[KeyIntakeID])
	if id == "" {
		return 0, newError(ErrInvalidID, "intakeId is required")
	}
	if err := p.check(IntakeFields.Keys()...); err != nil {
		return 0, err
	}
	fields := IntakeFields.Fields()
	vals := p.Values(fields)
	for i, f := range fields {
		if f.Column == ColIntakeID {
			vals[i] = id
		}
	}
	return s.insert(ctx, s.drv, tableIntakes, IntakeFields.Columns(), vals)
}

// ReplaceIntake overwrites all seven mutable intake columns. Keys missing
// from p are written as NULL; nothing is merged with the stored row.
func (s *Store) ReplaceIntake(ctx context.Context, id string, p Payload) (int64, error) {
	fields := IntakeFields.Except(ColIntakeID)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	if err := p.check(keys...); err != nil {
		return 0, err
	}
	u := entsql.Dialect(s.dialect).Update(tableIntakes)
	for _, f := range fields {
		u.Set(f.Column, p[f.Key])
	}
	u.Where(entsql.EQ(ColIntakeID, id))
	return s.exec(ctx, s.drv, u)
}

// SetStatus updates only the Status column.
func (s *Store) SetStatus(ctx context.Context, id string, status any) (int64, error) {
	return s.setIntakeColumn(ctx, ColStatus, KeyStatus, id, status)
}

// SetAttachment updates only the Attachment column.
func (s *Store) SetAttachment(ctx context.Context, id string, attachment any) (int64, error) {
	return s.setIntakeColumn(ctx, ColAttachment, KeyAttachment, id, attachment)
}

// DeleteIntake removes the jrm row. Metrics for the intake are kept.
func (s *Store) DeleteIntake(ctx context.Context, id string) (int64, error) {
	d := entsql.Dialect(s.dialect).Delete(tableIntakes).Where(entsql.EQ(ColIntakeID, id))
	return s.exec(ctx, s.drv, d)
}

// PropagateApprovedDate writes v into the intake's Approved Date.
func (s *Store) PropagateApprovedDate(ctx context.Context, id string, v any) (int64, error) {
	return s.setIntakeColumn(ctx, ColApprovedDate, KeyApprovedDate, id, v)
}

// CreateMetric stores the metrics row for p["intakeId"] after checking
// that the intake exists and has no metrics yet, then propagates
// p["approvedDate"] onto the intake.
func (s *Store) CreateMetric(ctx context.Context, p Payload) (*MetricCreated, error) {
	id, err := NormalizeID(IDString(p[KeyIntakeID]))
	if err != nil {
		return nil, err
	}
	if err := p.check(append(MetricFields.Keys(), KeyApprovedDate)...); err != nil {
		return nil, err
	}

	var rowID int64
	err = s.withTx(ctx, func(tx dialect.Tx) error {
		// the intake row lock serializes creates for one id and holds off
		// a concurrent intake delete until commit
		found, err := s.lockOne(ctx, tx, tableIntakes, id)
		if err != nil {
			return err
		}
		if found == nil {
			return newError(ErrIntakeNotFound, "Intake ID %s does not exist", id)
		}
		existing, err := s.selectOne(ctx, tx, tableMetrics, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return newError(ErrMetricExists, "Metrics for %s already exist", id)
		}
		cols := append([]string{ColIntakeID}, MetricFields.Columns()...)
		vals := append([]any{id}, p.Values(MetricFields.Fields())...)
		rowID, err = s.insert(ctx, tx, tableMetrics, cols, vals)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &MetricCreated{IntakeID: id, RowID: rowID, ApprovedDate: p[KeyApprovedDate]}
	if _, err := s.PropagateApprovedDate(ctx, id, p[KeyApprovedDate]); err != nil {
		storeLogger.Warn("metrics inserted but approved date not propagated",
			zap.String("intake_id", id), zap.Error(err))
		out.PropagationErr = err
	}
	return out, nil
}

// EditMetric merges p into the stored metrics row for rawID and rewrites
// all 24 mutable columns, even when p carries none of their keys. If p has
// an approvedDate key it is propagated onto the intake afterwards.
func (s *Store) EditMetric(ctx context.Context, rawID string, p Payload) (*MetricEdited, error) {
	id, err := NormalizeID(rawID)
	if err != nil {
		return nil, err
	}
	if err := p.check(append(MetricFields.Keys(), KeyApprovedDate)...); err != nil {
		return nil, err
	}

	var changes int64
	err = s.withTx(ctx, func(tx dialect.Tx) error {
		existing, err := s.lockOne(ctx, tx, tableMetrics, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return newError(ErrMetricNotFound, "Metrics for %s not found", id)
		}
		u := entsql.Dialect(s.dialect).Update(tableMetrics)
		for _, f := range MetricFields.Fields() {
			v := existing[f.Column]
			if p.Has(f.Key) {
				v = p[f.Key]
			}
			u.Set(f.Column, v)
		}
		u.Where(entsql.EQ(ColIntakeID, id))
		changes, err = s.exec(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &MetricEdited{IntakeID: id, Changes: changes}
	if p.Has(KeyApprovedDate) {
		out.ApprovedDateSet = true
		out.ApprovedDate = p[KeyApprovedDate]
		if _, err := s.PropagateApprovedDate(ctx, id, p[KeyApprovedDate]); err != nil {
			storeLogger.Warn("metrics updated but approved date not propagated",
				zap.String("intake_id", id), zap.Error(err))
			out.PropagationErr = err
		}
	}
	return out, nil
}

// DeleteMetric removes the metrics row for rawID and returns the
// normalized id that was deleted.
func (s *Store) DeleteMetric(ctx context.Context, rawID string) (string, error) {
	id, err := NormalizeID(rawID)
	if err != nil {
		return "", err
	}
	d := entsql.Dialect(s.dialect).Delete(tableMetrics).Where(entsql.EQ(ColIntakeID, id))
	n, err := s.exec(ctx, s.drv, d)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", newError(ErrMetricNotFound, "Not found")
	}
	return id, nil
}

func (s *Store) setIntakeColumn(ctx context.Context, column, key, id string, v any) (int64, error) {
	if err := (Payload{key: v}).check(key); err != nil {
		return 0, err
	}
	u := entsql.Dialect(s.dialect).Update(tableIntakes).
		Set(column, v).
		Where(entsql.EQ(ColIntakeID, id))
	return s.exec(ctx, s.drv, u)
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, eq dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) insert(ctx context.Context, eq dialect.ExecQuerier, table string, cols []string, vals []any) (int64, error) {
	ins := entsql.Dialect(s.dialect).Insert(table).Columns(cols...).Values(vals...)
	if s.dialect != dialect.Postgres {
		query, args := ins.Query()
		var res sql.Result
		if err := eq.Exec(ctx, query, args, &res); err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	// pgx has no LastInsertId; the postgres schema carries a rowid serial
	query, args := ins.Returning("rowid").Query()
	var rows entsql.Rows
	if err := eq.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, rows.Err()
}

func (s *Store) selectAll(ctx context.Context, eq dialect.ExecQuerier, table string) ([]Row, error) {
	b := entsql.Dialect(s.dialect)
	query, args := b.Select().From(b.Table(table)).Query()
	var rows entsql.Rows
	if err := eq.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return scanRows(&rows)
}

// selectOne returns the first row of table keyed by id, or nil.
func (s *Store) selectOne(ctx context.Context, eq dialect.ExecQuerier, table, id string) (Row, error) {
	return s.queryOne(ctx, eq, selectByID(s.dialect, table, id, false))
}

// lockOne is selectOne inside a transaction, holding a row lock until the
// transaction ends. SQLite has no row locks; its single connection already
// serializes transactions.
func (s *Store) lockOne(ctx context.Context, tx dialect.Tx, table, id string) (Row, error) {
	return s.queryOne(ctx, tx, selectByID(s.dialect, table, id, true))
}

func (s *Store) queryOne(ctx context.Context, eq dialect.ExecQuerier, sel *entsql.Selector) (Row, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := eq.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	out, err := scanRows(&rows)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return out[0], nil
}

func selectByID(d, table, id string, lock bool) *entsql.Selector {
	b := entsql.Dialect(d)
	sel := b.Select().
		From(b.Table(table)).
		Where(entsql.EQ(ColIntakeID, id)).
		Limit(1)
	if lock && d == dialect.Postgres {
		sel.ForUpdate()
	}
	return sel
}

func scanRows(rows *entsql.Rows) ([]Row, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
