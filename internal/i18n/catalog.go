package i18n

// Catalog holds every string the invoice layout prints
type Catalog struct {
	Language Language

	From           string
	BillTo         string
	SerialNo       string
	Description    string
	Hours          string
	UnitPrice      string
	Amount         string
	Subtotal       string
	CGST           string
	SGST           string
	ConsumptionTax string
	GrandTotal     string
	InvoiceNo      string
	Date           string
	DueDate        string
	EmployeeID     string
	Email          string
	Phone          string
	Address        string
	TaxID          string

	ThankYou        string
	ThankYouMessage string
	CompanySeal     string

	PaymentInstructions string
	BankName            string
	BranchName          string
	AccountType         string
	AccountNumber       string
	AccountName         string
	IFSC                string
	BranchCode          string
	PaymentNote         string
	AuthorisedSignature string

	ContactInfo string
	PhoneHours  string

	// EmailSubject and EmailBody take the invoice number
	EmailSubject string
	EmailBody    string
}

var english = Catalog{
	Language:       English,
	From:           "From:",
	BillTo:         "Bill To:",
	SerialNo:       "S.No",
	Description:    "Description",
	Hours:          "Hours",
	UnitPrice:      "Unit Price",
	Amount:         "Amount",
	Subtotal:       "Subtotal",
	CGST:           "CGST",
	SGST:           "SGST",
	ConsumptionTax: "Consumption Tax",
	GrandTotal:     "Grand Total",
	InvoiceNo:      "Invoice #",
	Date:           "Date:",
	DueDate:        "Due Date:",
	EmployeeID:     "Employee ID",
	Email:          "Email",
	Phone:          "Phone",
	Address:        "Address",
	TaxID:          "GSTIN",

	ThankYou:        "Thank you for your business!",
	ThankYouMessage: "Thank you for your business!",
	CompanySeal:     "(Company Seal)",

	PaymentInstructions: "Payment Details",
	BankName:            "Bank Name:",
	BranchName:          "Branch:",
	AccountType:         "Account Type:",
	AccountNumber:       "Account Number:",
	AccountName:         "Account Name:",
	IFSC:                "IFSC Code:",
	BranchCode:          "Branch Code:",
	PaymentNote:         "Please mention the invoice number as the payment reference.",
	AuthorisedSignature: "Authorised Signature",

	ContactInfo: "Contact",
	PhoneHours:  "(Weekdays 9:00-18:00)",

	EmailSubject: "Invoice %s",
	EmailBody:    "Please find attached invoice %s.",
}

var japanese = Catalog{
	Language:       Japanese,
	From:           "請求元:",
	BillTo:         "請求先:",
	SerialNo:       "No.",
	Description:    "品目",
	Hours:          "時間",
	UnitPrice:      "単価",
	Amount:         "金額",
	Subtotal:       "小計",
	CGST:           "CGST",
	SGST:           "SGST",
	ConsumptionTax: "消費税",
	GrandTotal:     "合計金額",
	InvoiceNo:      "請求書番号",
	Date:           "発行日:",
	DueDate:        "支払期限:",
	EmployeeID:     "社員番号",
	Email:          "メール",
	Phone:          "電話",
	Address:        "住所",
	TaxID:          "登録番号",

	ThankYou:        "ご利用いただきありがとうございます。",
	ThankYouMessage: "今後ともご愛顧のほどよろしくお願い申し上げます。",
	CompanySeal:     "〒 (会社印)",

	PaymentInstructions: "お振込先",
	BankName:            "銀行名:",
	BranchName:          "支店名:",
	AccountType:         "口座種別:",
	AccountNumber:       "口座番号:",
	AccountName:         "口座名義:",
	IFSC:                "金融機関コード:",
	BranchCode:          "支店コード:",
	PaymentNote:         "お振込手数料は貴社にてご負担ください。",
	AuthorisedSignature: "承認者署名",

	ContactInfo: "お問い合わせ",
	PhoneHours:  "(平日 9:00〜18:00)",

	EmailSubject: "請求書 %s",
	EmailBody:    "請求書 %s を添付いたします。ご確認のほどよろしくお願いいたします。",
}

// CatalogFor returns a copy of the string table for lang.
// Unknown languages get English.
func CatalogFor(lang Language) Catalog {
	if lang == Japanese {
		return japanese
	}
	return english
}
