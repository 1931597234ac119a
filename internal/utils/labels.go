package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// knownFieldLabels maps backend field keys to translation keys, grouped by
// profile domain.
var knownFieldLabels = map[string]string{
	// personal
	"first_name":     "fields.personal.first_name",
	"last_name":      "fields.personal.last_name",
	"date_of_birth":  "fields.personal.date_of_birth",
	"email":          "fields.personal.email",
	"phone":          "fields.personal.phone",
	"address":        "fields.personal.address",
	"postal_code":    "fields.personal.postal_code",
	"city":           "fields.personal.city",
	"nationality":    "fields.personal.nationality",
	"marital_status": "fields.personal.marital_status",
	"housing":        "fields.personal.housing",

	// income
	"gross_income":      "fields.income.gross_income",
	"net_income":        "fields.income.net_income",
	"other_income":      "fields.income.other_income",
	"benefits":          "fields.income.benefits",
	"pension_income":    "fields.income.pension_income",
	"holiday_allowance": "fields.income.holiday_allowance",

	// employment
	"employer":       "fields.employment.employer",
	"job_title":      "fields.employment.job_title",
	"contract_type":  "fields.employment.contract_type",
	"start_date":     "fields.employment.start_date",
	"hours_per_week": "fields.employment.hours_per_week",

	// expenses
	"rent":             "fields.expenses.rent",
	"mortgage_payment": "fields.expenses.mortgage_payment",
	"utilities":        "fields.expenses.utilities",
	"insurance":        "fields.expenses.insurance",
	"groceries":        "fields.expenses.groceries",
	"transport":        "fields.expenses.transport",
	"childcare":        "fields.expenses.childcare",
	"subscriptions":    "fields.expenses.subscriptions",

	// assets
	"savings":         "fields.assets.savings",
	"investments":     "fields.assets.investments",
	"property_value":  "fields.assets.property_value",
	"vehicle_value":   "fields.assets.vehicle_value",
	"pension_savings": "fields.assets.pension_savings",

	// liabilities
	"loan_type":           "fields.liabilities.loan_type",
	"loan_amount":         "fields.liabilities.loan_amount",
	"monthly_payment":     "fields.liabilities.monthly_payment",
	"outstanding_balance": "fields.liabilities.outstanding_balance",
	"interest_rate":       "fields.liabilities.interest_rate",
	"credit_card_debt":    "fields.liabilities.credit_card_debt",
	"student_loan":        "fields.liabilities.student_loan",

	// family
	"partner_name":       "fields.family.partner_name",
	"number_of_children": "fields.family.number_of_children",
	"relation":           "fields.family.relation",
	"birth_date":         "fields.family.birth_date",
}

// FieldLabel returns the display label for a raw field key. Unknown keys,
// or known keys whose translation is missing, fall back to HumanizeKey.
func FieldLabel(key string, t func(string) string) string {
	if translationKey, ok := knownFieldLabels[key]; ok && t != nil {
		if label := t(translationKey); label != "" && label != translationKey {
			return label
		}
	}
	return HumanizeKey(key)
}

// IsKnownField reports whether key has an entry in the label table.
func IsKnownField(key string) bool {
	_, ok := knownFieldLabels[key]
	return ok
}

// HumanizeKey turns "custom_note" into "Custom Note".
func HumanizeKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
