package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// PromptString renders the active database's schema as the plain-text
// description the text-to-SQL oracle is prompted with:
//
//	Table: customers
//	Columns:
//	  - id (INTEGER)
//	  - name (TEXT)
//
// Tables are sorted so the prompt is deterministic across calls.
func (i *Introspector) PromptString(ctx context.Context) (string, error) {
	schemas, err := i.AllSchemas(ctx)
	if err != nil {
		return "", err
	}

	if len(schemas) == 0 {
		return "No tables found in the database.", nil
	}

	tables := make([]string, 0, len(schemas))
	for table := range schemas {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var sb strings.Builder
	for _, table := range tables {
		sb.WriteString("Table: ")
		sb.WriteString(table)
		sb.WriteString("\nColumns:\n")
		for _, col := range schemas[table] {
			fmt.Fprintf(&sb, "  - %s (%s)\n", col.Name, col.DataType)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
