package category

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Category
	}{
		{name: "canonical value", raw: "consumables", want: Consumables},
		{name: "uppercase with spaces", raw: "  Travel ", want: Travel},
		{name: "first generation alias", raw: "supplies", want: Consumables},
		{name: "second generation alias", raw: "travel_expenses", want: Travel},
		{name: "income alias", raw: "revenue", want: Sales},
		{name: "unknown value", raw: "cryptocurrency", want: Uncategorized},
		{name: "empty string", raw: "", want: Uncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMigrateLegacy(t *testing.T) {
	if c, ok := MigrateLegacy("transportation"); !ok || c != Travel {
		t.Errorf("MigrateLegacy(transportation) = %q, %v", c, ok)
	}
	if _, ok := MigrateLegacy("sales"); ok {
		t.Error("canonical values must not be treated as legacy aliases")
	}
}

func TestColumnFor(t *testing.T) {
	if got := ColumnFor(Sales); got != "sales" {
		t.Errorf("ColumnFor(Sales) = %q", got)
	}
	if got := ColumnFor(Uncategorized); got != ColumnMiscellaneous {
		t.Errorf("ColumnFor(Uncategorized) = %q, want miscellaneous", got)
	}
	if got := ColumnFor(Category("bogus")); got != ColumnMiscellaneous {
		t.Errorf("ColumnFor(bogus) = %q, want miscellaneous", got)
	}
}

func TestColumnsOrderAndKinds(t *testing.T) {
	cols := Columns()
	if len(cols) != len(All)-1 {
		t.Fatalf("Columns() has %d entries, want %d", len(cols), len(All)-1)
	}
	if cols[0] != "sales" || cols[1] != "misc_income" || cols[2] != ColumnPurchases {
		t.Errorf("statutory order broken: %v", cols[:3])
	}

	if KindOf("sales") != KindIncome {
		t.Error("sales must be an income column")
	}
	if KindOf(ColumnPurchases) != KindPurchases {
		t.Error("purchases must be its own kind")
	}
	if KindOf("rent") != KindExpense {
		t.Error("rent must be an expense column")
	}
	if KindOf(Column("bogus")) != KindExpense {
		t.Error("unknown columns must count as expenses")
	}
}

func TestEveryCategoryReachesAColumn(t *testing.T) {
	seen := make(map[Column]bool)
	for _, c := range All {
		col := ColumnFor(c)
		if col == "" {
			t.Errorf("category %q maps to empty column", c)
		}
		seen[col] = true
	}
	if !seen[ColumnMiscellaneous] {
		t.Error("miscellaneous fallback never used")
	}
}
