package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yeremiapane/revision-history/revisionable"
	"github.com/yeremiapane/revision-history/utils"
)

// Placeholders are shown when a related record is unset or cannot be found.
type Placeholders struct {
	Null    string
	Unknown string
}

// AllModels lists every model that gets a table.
func AllModels() []any {
	return []any{
		&User{},
		&Table{},
		&Customer{},
		&CleaningLog{},
		&MenuCategory{},
		&Menu{},
		&Order{},
		&OrderItem{},
		&Notification{},
		&Comment{},
	}
}

// RevisionKinds declares how revisions of each model are displayed.
func RevisionKinds(p Placeholders) []revisionable.Kind {
	kind := func(name string, model any) revisionable.Kind {
		return revisionable.Kind{Name: name, Model: model, NullString: p.Null, UnknownString: p.Unknown}
	}

	user := kind("User", &User{})
	user.NullString = "nobody"
	user.FieldNames = map[string]string{"name": "Full name"}

	table := kind("Table", &Table{})
	table.FormattedFields = map[string]string{
		"status": "options:available.Available|occupied.Occupied|dirty.Needs cleaning",
	}

	customer := kind("Customer", &Customer{})
	customer.FormattedFields = map[string]string{
		"status": "options:active.Active|inactive.Inactive",
	}

	cleaning := kind("CleaningLog", &CleaningLog{})
	cleaning.FormattedFields = map[string]string{
		"status": "options:pending.Pending|in_progress.In progress|done.Done",
	}

	category := kind("MenuCategory", &MenuCategory{})

	menu := kind("Menu", &Menu{})
	menu.FormattedFields = map[string]string{
		"price":        "currency:IDR",
		"stock":        "string:%s left",
		"is_available": "boolean:Available|Sold out",
		"description":  "isEmpty:No description|%s",
	}
	menu.FieldNames = map[string]string{"is_available": "Availability"}

	order := kind("Order", &Order{})
	order.FormattedFields = map[string]string{
		"total_amount":        "currency:IDR",
		"status":              "options:pending_payment.Waiting for payment|paid.Paid|in_progress.Cooking|ready.Ready|completed.Completed",
		"start_cooking_time":  "datetime:02 Jan 2006 15:04",
		"finish_cooking_time": "datetime:02 Jan 2006 15:04",
	}
	order.FieldNames = map[string]string{"chef_id": "Chef"}

	item := kind("OrderItem", &OrderItem{})
	item.FormattedFields = map[string]string{"price": "currency:IDR"}
	item.FieldNames = map[string]string{"parent_item_id": "Add-on of"}

	notification := kind("Notification", &Notification{})
	notification.PolymorphicFields = []string{"subject"}
	notification.FieldNames = map[string]string{"user_id": "Recipient"}

	comment := kind("Comment", &Comment{})
	comment.UnknownString = "deleted comment"

	return []revisionable.Kind{user, table, customer, cleaning, category, menu, order, item, notification, comment}
}

// RegisterKinds registers every model kind plus the configured type aliases.
func RegisterKinds(reg *revisionable.Registry, p Placeholders, aliases map[string]string) error {
	for _, k := range RevisionKinds(p) {
		if err := reg.Register(k); err != nil {
			return err
		}
	}
	for alias, name := range aliases {
		if err := reg.Alias(alias, name); err != nil {
			return fmt.Errorf("morph map: %w", err)
		}
	}
	return nil
}

// RegisterFormatters adds the directives the models' rules rely on.
func RegisterFormatters(f *revisionable.FieldFormatter) {
	f.Register("currency", formatCurrency)
}

func formatCurrency(value, currency string) string {
	if !strings.EqualFold(currency, "IDR") {
		return value
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	return utils.FormatCurrencyIDR(amount)
}

func maskSecret(value string) string {
	if value == "" {
		return value
	}
	return "********"
}
