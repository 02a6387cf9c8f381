package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/errs"
)

func TestReadCSV(t *testing.T) {
	input := "id,Name,Unit Price,In Stock\n1,Widget,9.99,100\n2,Gadget,24.50,3\n"

	f, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "unit_price", "in_stock"}, f.Columns)
	assert.Equal(t, []string{"INTEGER", "TEXT", "REAL", "INTEGER"}, f.Types)
	require.Len(t, f.Records, 2)
	assert.Equal(t, []string{"1", "Widget", "9.99", "100"}, f.Records[0])
}

func TestReadCSV_NoHeader(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("a,1\nb,2\n"), CSVOptions{NoHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"column_0", "column_1"}, f.Columns)
	assert.Equal(t, []string{"TEXT", "INTEGER"}, f.Types)
	assert.Len(t, f.Records, 2)
}

func TestReadCSV_CustomDelimiter(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("x;y\n1;2\n"), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, f.Columns)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"ragged rows", "a,b\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), CSVOptions{})
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestCleanColumnNames(t *testing.T) {
	got := cleanColumnNames([]string{" First Name ", "e-mail", "2nd place", "", "ok_name"})
	assert.Equal(t, []string{"first_name", "e_mail", "col_2nd_place", "column_3", "ok_name"}, got)
}

func TestDetectColumnTypes(t *testing.T) {
	records := [][]string{
		{"1", "1.5", "hello", "", "7"},
		{"2", "2", "world", "", "x"},
	}
	cols := []string{"a", "b", "c", "d", "e"}

	got := detectColumnTypes(cols, records)
	assert.Equal(t, []string{"INTEGER", "REAL", "TEXT", "TEXT", "TEXT"}, got)
}

func TestCSVFile_Preview(t *testing.T) {
	input := "id,name\n1,alpha\n2,beta\n3,gamma\n"
	f, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	p := f.Preview(2)
	assert.Equal(t, 3, p.TotalRows)
	assert.Equal(t, 2, p.PreviewRows)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, int64(1), p.Rows[0]["id"])
	assert.Equal(t, "alpha", p.Rows[0]["name"])
	assert.Equal(t, "INTEGER", p.Types["id"])
}

func TestImporter_ImportCSV(t *testing.T) {
	imp, reg := newTestImporter(t)
	ctx := context.Background()

	input := "id,city,population\n1,Springfield,30000\n2,Shelbyville,25000\n"
	f, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	res, err := imp.ImportCSV(ctx, f, "cities", PolicyReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, 3, res.ColumnCount)

	assert.Equal(t, int64(2), tableCount(t, reg, "cities"))

	// replace truncates before reloading
	_, err = imp.ImportCSV(ctx, f, "cities", PolicyReplace)
	require.NoError(t, err)
	assert.Equal(t, int64(2), tableCount(t, reg, "cities"))

	// append doubles up (no primary key on CSV tables)
	_, err = imp.ImportCSV(ctx, f, "cities", PolicyAppend)
	require.NoError(t, err)
	assert.Equal(t, int64(4), tableCount(t, reg, "cities"))

	// fail refuses a populated table
	_, err = imp.ImportCSV(ctx, f, "cities", PolicyFail)
	require.Error(t, err)
	assert.True(t, errs.IsAlreadyPopulated(err))
}

func TestImporter_ImportCSVRequiresTable(t *testing.T) {
	imp, _ := newTestImporter(t)

	f, err := ReadCSV(strings.NewReader("a\n1\n"), CSVOptions{})
	require.NoError(t, err)

	_, err = imp.ImportCSV(context.Background(), f, "", PolicyReplace)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
