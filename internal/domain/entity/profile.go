package entity

// BankDetails holds the payee account printed in the payment block
type BankDetails struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	AccountHolderName string `json:"accountHolderName"`
	IFSCCode          string `json:"ifscCode"`
	BranchName        string `json:"branchName,omitempty"`
	BranchCode        string `json:"branchCode,omitempty"`
	AccountType       string `json:"accountType,omitempty"`
}

// CompanyProfile identifies the issuing company
type CompanyProfile struct {
	CompanyName    string       `json:"companyName"`
	CompanyAddress string       `json:"companyAddress"`
	TaxID          string       `json:"taxId,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Email          string       `json:"email,omitempty"`
	CompanyLogoURL string       `json:"companyLogoUrl,omitempty"`
	BankDetails    *BankDetails `json:"bankDetails,omitempty"`
}

// Bank returns the bank details or an empty value when none are set
func (p *CompanyProfile) Bank() BankDetails {
	if p == nil || p.BankDetails == nil {
		return BankDetails{}
	}
	return *p.BankDetails
}
