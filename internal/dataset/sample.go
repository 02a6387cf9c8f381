package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnDef describes one column of a built-in table.
type ColumnDef struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// ForeignKey describes a referential constraint emitted into the DDL.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef is a built-in sample table: schema, constraints, and seed rows.
// Rows are positional, aligned with Columns.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
	Rows        [][]any
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// DDL renders the CREATE TABLE statement for the table. The generated SQL
// sticks to types every supported engine accepts.
func (t TableDef) DDL() string {
	var parts []string
	for _, c := range t.Columns {
		def := fmt.Sprintf("    %s %s", c.Name, c.Type)
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		parts = append(parts, def)
	}
	for _, fk := range t.ForeignKeys {
		parts = append(parts, fmt.Sprintf("    FOREIGN KEY(%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(parts, ",\n"))
}

// sampleTables holds the built-in dataset: a small commerce domain
// (customers, products, orders) plus a staffing domain (employees,
// projects) so generated queries have joins worth exercising.
var sampleTables = map[string]TableDef{
	"customers": {
		Name: "customers",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "email", Type: "TEXT"},
			{Name: "phone", Type: "TEXT"},
			{Name: "address", Type: "TEXT"},
			{Name: "city", Type: "TEXT"},
			{Name: "created_at", Type: "DATE"},
		},
		Rows: [][]any{
			{1, "John Smith", "john@example.com", "555-1234", "123 Main St", "New York", "2023-01-05"},
			{2, "Emily Johnson", "emily@example.com", "555-5678", "456 Oak Ave", "Los Angeles", "2023-02-10"},
			{3, "Michael Brown", "michael@example.com", "555-9012", "789 Pine Rd", "Chicago", "2023-03-15"},
			{4, "Sarah Davis", "sarah@example.com", "555-3456", "101 Elm St", "Houston", "2023-04-20"},
			{5, "David Wilson", "david@example.com", "555-7890", "202 Maple Ave", "Phoenix", "2023-05-25"},
		},
	},
	"products": {
		Name: "products",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "category", Type: "TEXT"},
			{Name: "price", Type: "REAL"},
			{Name: "stock", Type: "INTEGER"},
			{Name: "created_at", Type: "DATE"},
		},
		Rows: [][]any{
			{1, "Laptop", "Electronics", 1200.00, 15, "2023-01-10"},
			{2, "Smartphone", "Electronics", 800.00, 25, "2023-01-15"},
			{3, "Coffee Table", "Furniture", 300.00, 10, "2023-02-05"},
			{4, "Desk Chair", "Furniture", 150.00, 20, "2023-02-20"},
			{5, "Headphones", "Electronics", 100.00, 30, "2023-03-10"},
			{6, "Bookshelf", "Furniture", 250.00, 8, "2023-03-25"},
			{7, "Tablet", "Electronics", 500.00, 12, "2023-04-05"},
			{8, "Sofa", "Furniture", 900.00, 5, "2023-04-15"},
		},
	},
	"orders": {
		Name: "orders",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "customer_id", Type: "INTEGER"},
			{Name: "order_date", Type: "DATE"},
			{Name: "total_amount", Type: "REAL"},
			{Name: "status", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "customer_id", RefTable: "customers", RefColumn: "id"},
		},
		Rows: [][]any{
			{1, 1, "2023-02-01", 1200.00, "Delivered"},
			{2, 2, "2023-03-05", 950.00, "Delivered"},
			{3, 3, "2023-04-10", 300.00, "Shipped"},
			{4, 1, "2023-05-15", 650.00, "Processing"},
			{5, 4, "2023-06-01", 1100.00, "Delivered"},
			{6, 5, "2023-06-15", 800.00, "Shipped"},
			{7, 2, "2023-07-01", 400.00, "Processing"},
		},
	},
	"order_items": {
		Name: "order_items",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "order_id", Type: "INTEGER"},
			{Name: "product_id", Type: "INTEGER"},
			{Name: "quantity", Type: "REAL"},
			{Name: "price", Type: "REAL"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "order_id", RefTable: "orders", RefColumn: "id"},
			{Column: "product_id", RefTable: "products", RefColumn: "id"},
		},
		Rows: [][]any{
			{1, 1, 1, 1.0, 1200.00},
			{2, 2, 2, 1.0, 800.00},
			{3, 2, 5, 1.0, 100.00},
			{4, 2, 6, 0.2, 50.00},
			{5, 3, 3, 1.0, 300.00},
			{6, 4, 7, 1.0, 500.00},
			{7, 4, 5, 1.0, 100.00},
			{8, 4, 6, 0.2, 50.00},
			{9, 5, 2, 1.0, 800.00},
			{10, 5, 5, 3.0, 300.00},
			{11, 6, 2, 1.0, 800.00},
			{12, 7, 3, 1.0, 300.00},
			{13, 7, 5, 1.0, 100.00},
		},
	},
	"employees": {
		Name: "employees",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "first_name", Type: "TEXT"},
			{Name: "last_name", Type: "TEXT"},
			{Name: "email", Type: "TEXT"},
			{Name: "department", Type: "TEXT"},
			{Name: "hire_date", Type: "DATE"},
			{Name: "salary", Type: "REAL"},
		},
		Rows: [][]any{
			{1, "Robert", "Johnson", "robert@example.com", "Sales", "2021-03-15", 60000.00},
			{2, "Jennifer", "Smith", "jennifer@example.com", "Marketing", "2020-08-10", 65000.00},
			{3, "William", "Brown", "william@example.com", "IT", "2019-11-20", 75000.00},
			{4, "Maria", "Garcia", "maria@example.com", "HR", "2022-01-05", 62000.00},
			{5, "James", "Miller", "james@example.com", "Finance", "2020-05-15", 70000.00},
			{6, "Elizabeth", "Davis", "elizabeth@example.com", "Sales", "2021-07-22", 61000.00},
			{7, "Michael", "Wilson", "michael@example.com", "IT", "2019-06-30", 78000.00},
			{8, "Susan", "Anderson", "susan@example.com", "Marketing", "2022-02-18", 63000.00},
		},
	},
	"projects": {
		Name: "projects",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "start_date", Type: "DATE"},
			{Name: "end_date", Type: "DATE"},
			{Name: "budget", Type: "REAL"},
			{Name: "status", Type: "TEXT"},
		},
		Rows: [][]any{
			{1, "Website Redesign", "2023-01-10", "2023-04-15", 50000.00, "Completed"},
			{2, "Mobile App Development", "2023-02-20", "2023-07-30", 75000.00, "In Progress"},
			{3, "Database Migration", "2023-03-05", "2023-05-20", 30000.00, "Completed"},
			{4, "Digital Marketing Campaign", "2023-04-10", "2023-09-30", 45000.00, "In Progress"},
			{5, "Office Renovation", "2023-05-15", "2023-08-15", 100000.00, "In Progress"},
		},
	},
	"assignments": {
		Name: "assignments",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "project_id", Type: "INTEGER"},
			{Name: "employee_id", Type: "INTEGER"},
			{Name: "role", Type: "TEXT"},
			{Name: "assigned_date", Type: "DATE"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "project_id", RefTable: "projects", RefColumn: "id"},
			{Column: "employee_id", RefTable: "employees", RefColumn: "id"},
		},
		Rows: [][]any{
			{1, 1, 2, "Project Manager", "2023-01-10"},
			{2, 1, 3, "Developer", "2023-01-15"},
			{3, 1, 8, "Designer", "2023-01-20"},
			{4, 2, 7, "Project Manager", "2023-02-20"},
			{5, 2, 3, "Developer", "2023-02-25"},
			{6, 3, 5, "Project Manager", "2023-03-05"},
			{7, 3, 7, "Database Admin", "2023-03-10"},
			{8, 4, 2, "Project Manager", "2023-04-10"},
			{9, 4, 8, "Marketing Specialist", "2023-04-15"},
			{10, 5, 4, "Project Manager", "2023-05-15"},
			{11, 5, 5, "Finance Analyst", "2023-05-20"},
		},
	},
	"feedback": {
		Name: "feedback",
		Columns: []ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "customer_id", Type: "INTEGER"},
			{Name: "order_id", Type: "INTEGER"},
			{Name: "rating", Type: "INTEGER"},
			{Name: "comment", Type: "TEXT"},
			{Name: "created_at", Type: "DATE"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "customer_id", RefTable: "customers", RefColumn: "id"},
			{Column: "order_id", RefTable: "orders", RefColumn: "id"},
		},
		Rows: [][]any{
			{1, 1, 1, 5, "Excellent product and fast delivery", "2023-02-10"},
			{2, 2, 2, 4, "Good product but packaging could be better", "2023-03-15"},
			{3, 3, 3, 5, "Very satisfied with my purchase", "2023-04-20"},
			{4, 1, 4, 3, "Product is good but delivery was delayed", "2023-05-25"},
			{5, 4, 5, 5, "Perfect in every way!", "2023-06-10"},
		},
	},
}

// Table returns the built-in definition for a table name.
func Table(name string) (TableDef, bool) {
	t, ok := sampleTables[name]
	return t, ok
}

// Tables returns all built-in table names, sorted.
func Tables() []string {
	names := make([]string, 0, len(sampleTables))
	for name := range sampleTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SampleGraph builds the dependency graph of the built-in tables from their
// foreign keys. Each FK makes the child table depend on its parent.
func SampleGraph() *Graph {
	g := NewGraph()
	for name, def := range sampleTables {
		g.AddNode(name)
		for _, fk := range def.ForeignKeys {
			g.AddDependency(name, fk.RefTable)
		}
	}
	return g
}
