package category

// Column identifies one income or expense column of the ledger sheet.
// Columns are sparse: a ledger row populates exactly one of them.
type Column string

// ColumnKind partitions columns for the derived subtotal formulas. Purchases
// is its own kind because net amount subtracts it separately from expenses.
type ColumnKind int

const (
	KindIncome ColumnKind = iota
	KindPurchases
	KindExpense
)

// columnSpec is one entry of the fixed category → column table.
type columnSpec struct {
	Column Column
	Kind   ColumnKind
	Label  string // statutory Japanese column header
}

// columnTable is the single source of truth for category → column mapping.
// Categories with no entry (only Uncategorized today) fall to the
// miscellaneous column.
var columnTable = map[Category]columnSpec{
	Sales:         {Column: "sales", Kind: KindIncome, Label: "売上"},
	MiscIncome:    {Column: "misc_income", Kind: KindIncome, Label: "雑収入"},
	Purchases:     {Column: "purchases", Kind: KindPurchases, Label: "仕入"},
	Wages:         {Column: "wages", Kind: KindExpense, Label: "給料賃金"},
	Outsourcing:   {Column: "outsourcing", Kind: KindExpense, Label: "外注工賃"},
	Rent:          {Column: "rent", Kind: KindExpense, Label: "地代家賃"},
	Utilities:     {Column: "utilities", Kind: KindExpense, Label: "水道光熱費"},
	Travel:        {Column: "travel", Kind: KindExpense, Label: "旅費交通費"},
	Communication: {Column: "communication", Kind: KindExpense, Label: "通信費"},
	Advertising:   {Column: "advertising", Kind: KindExpense, Label: "広告宣伝費"},
	Entertainment: {Column: "entertainment", Kind: KindExpense, Label: "接待交際費"},
	Insurance:     {Column: "insurance", Kind: KindExpense, Label: "損害保険料"},
	Repairs:       {Column: "repairs", Kind: KindExpense, Label: "修繕費"},
	Consumables:   {Column: "consumables", Kind: KindExpense, Label: "消耗品費"},
	TaxesAndDues:  {Column: "taxes_dues", Kind: KindExpense, Label: "租税公課"},
	Freight:       {Column: "freight", Kind: KindExpense, Label: "荷造運賃"},
	Interest:      {Column: "interest", Kind: KindExpense, Label: "利子割引料"},
	Welfare:       {Column: "welfare", Kind: KindExpense, Label: "福利厚生費"},
	Miscellaneous: {Column: "miscellaneous", Kind: KindExpense, Label: "雑費"},
}

// ColumnMiscellaneous is the catch-all expense column for unmapped
// categories.
const ColumnMiscellaneous Column = "miscellaneous"

// ColumnPurchases is referenced by the net-amount formula.
const ColumnPurchases Column = "purchases"

// ColumnFor maps a category onto its ledger column. Categories without a
// table entry are not an error; they land in the miscellaneous column.
func ColumnFor(c Category) Column {
	if spec, ok := columnTable[c]; ok {
		return spec.Column
	}
	return ColumnMiscellaneous
}

var kindByColumn = func() map[Column]ColumnKind {
	m := make(map[Column]ColumnKind, len(columnTable))
	for _, spec := range columnTable {
		m[spec.Column] = spec.Kind
	}
	return m
}()

// KindOf returns the kind of a ledger column. Unknown columns count as
// expenses, matching the miscellaneous fallback.
func KindOf(col Column) ColumnKind {
	if k, ok := kindByColumn[col]; ok {
		return k
	}
	return KindExpense
}

// Columns lists every ledger column in statutory order: income first, then
// purchases, then the expense columns.
func Columns() []Column {
	out := make([]Column, 0, len(All)-1)
	for _, c := range All {
		if spec, ok := columnTable[c]; ok {
			out = append(out, spec.Column)
		}
	}
	return out
}

var labelByColumn = func() map[Column]string {
	m := make(map[Column]string, len(columnTable))
	for _, spec := range columnTable {
		m[spec.Column] = spec.Label
	}
	return m
}()

// Label returns the statutory Japanese header for a ledger column.
func Label(col Column) string {
	if l, ok := labelByColumn[col]; ok {
		return l
	}
	return string(col)
}
