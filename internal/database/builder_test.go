package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/errs"
)

func TestSelectBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, []any, error)
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "select star",
			build: func() (string, []any, error) {
				return Select("customers", DialectSQLite).Build()
			},
			wantSQL: `SELECT * FROM "customers"`,
		},
		{
			name: "columns where limit sqlite",
			build: func() (string, []any, error) {
				return Select("customers", DialectSQLite).
					Columns("id", "name").
					Where("city", "=", "Chicago").
					Limit(5).
					Build()
			},
			wantSQL:  `SELECT "id", "name" FROM "customers" WHERE "city" = ? LIMIT ?`,
			wantArgs: []any{"Chicago", 5},
		},
		{
			name: "postgres placeholders increment",
			build: func() (string, []any, error) {
				return Select("orders", DialectPostgres).
					Where("status", "=", "Shipped").
					Where("total_amount", ">", 100).
					Limit(10).
					Offset(20).
					Build()
			},
			wantSQL:  `SELECT * FROM "orders" WHERE "status" = $1 AND "total_amount" > $2 LIMIT $3 OFFSET $4`,
			wantArgs: []any{"Shipped", 100, 10, 20},
		},
		{
			name: "order by desc",
			build: func() (string, []any, error) {
				return Select("products", DialectMySQL).
					OrderBy("price", Desc).
					OrderBy("name", Asc).
					Build()
			},
			wantSQL: `SELECT * FROM "products" ORDER BY "price" DESC, "name" ASC`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSelectBuilder_RejectsBadOperator(t *testing.T) {
	_, _, err := Select("t", DialectSQLite).
		Where("name", "= 1 OR 1", "x").
		Build()
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"name"`, QuoteIdent("name"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$3", Placeholder(DialectPostgres, 3))
	assert.Equal(t, "?", Placeholder(DialectMySQL, 3))
	assert.Equal(t, "?", Placeholder(DialectSQLite, 1))
}

func TestEngineValid(t *testing.T) {
	assert.True(t, EngineSQLite.Valid())
	assert.True(t, EnginePostgres.Valid())
	assert.True(t, EngineMySQL.Valid())
	assert.False(t, Engine("oracle").Valid())
	assert.False(t, Engine("").Valid())
}
