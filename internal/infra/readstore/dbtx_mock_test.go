//go:build unit

package readstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ret := m.Called(ctx, sql, args)
	rows, _ := ret.Get(0).(pgx.Rows)
	return rows, ret.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

// valuesRow assigns each value to the destination at the same position. A nil
// value leaves the destination untouched.
type valuesRow struct {
	values []any
	err    error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("valuesRow: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		if r.values[i] == nil {
			continue
		}
		target := reflect.ValueOf(d).Elem()
		v := reflect.ValueOf(r.values[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("valuesRow: column %d: %s into %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

func (r valuesRow) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r valuesRow) Values() ([]any, error)                       { return r.values, r.err }
func (r valuesRow) RawValues() [][]byte                          { return nil }
