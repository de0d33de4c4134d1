package pipeline

import (
	"strings"

	"github.com/tsaito/receipt-ledger/internal/category"
)

// buildReceiptPrompt constructs the extraction instructions sent to the
// vision model alongside the receipt image. The model must return STRICT
// JSON matching the schema the transform step expects.
func buildReceiptPrompt() string {
	var b strings.Builder

	b.WriteString("You are a parser for Japanese receipts (レシート・領収書).\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Read the attached receipt image and extract its accounting fields.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")

	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"issuer_name\": string (store or company that issued the receipt)\n")
	b.WriteString("- \"t_number\": string or null (invoice registration number, \"T\" + 13 digits)\n")
	b.WriteString("- \"transaction_date\": string, ISO format \"YYYY-MM-DD\", or null if unreadable\n")
	b.WriteString("- \"subtotal_excluding_tax\": integer yen\n")
	b.WriteString("- \"tax_breakdown\": array of {\"rate\": 8 or 10, \"subtotal\": integer, \"tax_amount\": integer, \"total\": integer}\n")
	b.WriteString("- \"total_amount\": integer yen\n")
	b.WriteString("- \"category\": string (one of the categories below)\n")
	b.WriteString("- \"category_confidence\": number in [0,1]\n")
	b.WriteString("- \"line_items\": array of {\"name\": string, \"quantity\": integer, \"price\": integer} or []\n")
	b.WriteString("- \"payment_method\": string or null\n")
	b.WriteString("- \"confidence\": {\"overall\": number, \"fields\": {\"issuer\": n, \"t_number\": n, \"date\": n, \"total\": n, \"tax_breakdown\": n, \"category\": n}}\n\n")

	b.WriteString("Use ONLY the following categories:\n")
	for _, c := range category.All {
		b.WriteString("  - " + string(c) + "\n")
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Receipts may mix the 8% reduced rate and the 10% standard rate; emit one tax_breakdown entry per rate.\n")
	b.WriteString("- All amounts are whole yen. Never emit decimals.\n")
	b.WriteString("- If a field cannot be read, use null and lower its confidence.\n")
	b.WriteString("- If unsure about the category, use \"uncategorized\".\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}
