package notionsync

import (
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/gcs"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

// ReceiptToNotionProperties converts a review-flagged receipt to Notion
// properties for the review board database.
func ReceiptToNotionProperties(rcpt *domain.Receipt) notionapi.Properties {
	props := notionapi.Properties{
		"Receipt ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rcpt.ID,
					},
				},
			},
		},
	}

	// Issuer
	if rcpt.Data.IssuerName != "" {
		props["Issuer"] = richText(rcpt.Data.IssuerName)
	}

	// Date
	if !rcpt.Data.TransactionDate.IsZero() {
		date := notionapi.Date(rcpt.Data.TransactionDate)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &date,
			},
		}
	}

	// Total
	props["Total"] = notionapi.NumberProperty{
		Number: float64(rcpt.Data.TotalAmount),
	}

	// Category
	if rcpt.Data.SuggestedCategory != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rcpt.Data.SuggestedCategory),
			},
		}
	}

	// Status
	props["Status"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: string(rcpt.Status),
		},
	}

	// Confidence
	props["Confidence"] = notionapi.NumberProperty{
		Number: rcpt.Confidence.Overall,
	}

	// Invoice registration number, when present
	if rcpt.Data.TNumber != nil {
		props["T-Number"] = richText(*rcpt.Data.TNumber)
	}

	// Notes
	if rcpt.Notes != "" {
		props["Notes"] = richText(rcpt.Notes)
	}

	// Source image object name, so the reviewer can pull it from the bucket
	if rcpt.ImageURI != "" {
		props["Image File"] = richText(gcs.Filename(rcpt.ImageURI))
	}

	return props
}

// richText wraps plain text in a single-run rich text property.
func richText(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{
					Content: content,
				},
			},
		},
	}
}

// ReviewReasons summarizes validation findings for a review page.
func ReviewReasons(res validation.Result) string {
	if res.IsValid && len(res.Warnings) == 0 {
		return ""
	}
	msg := ""
	for _, e := range res.Errors {
		msg += fmt.Sprintf("error: %s\n", e)
	}
	for _, w := range res.Warnings {
		msg += fmt.Sprintf("warning: %s\n", w.Kind)
	}
	return msg
}
