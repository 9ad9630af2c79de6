package model

// Registration is one accepted conference registration form submission.
// Both file references are mandatory, a registration is only created
// after both uploads have succeeded.
type Registration struct {
	BaseModel
	FullName          string  `gorm:"type:text;not null" json:"fullName"`
	Gender            string  `gorm:"type:text;not null" json:"gender"`
	DateOfBirth       string  `gorm:"type:text;not null" json:"dob"`
	Nationality       string  `gorm:"type:text;not null" json:"nationality"`
	Mobile            string  `gorm:"type:text;not null" json:"mobile"`
	Email             string  `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Address           string  `gorm:"type:text;not null" json:"address"`
	Institution       string  `gorm:"type:text;not null" json:"institution"`
	Designation       string  `gorm:"type:text;not null" json:"designation"`
	Department        string  `gorm:"type:text;not null" json:"department"`
	Category          string  `gorm:"type:text;not null" json:"category"`
	Fee               float64 `gorm:"type:numeric;not null" json:"fee"`
	PaymentReference  string  `gorm:"type:text;not null" json:"paymentReference"`
	ParticipationType string  `gorm:"type:text;not null" json:"participationType"`
	Title             string  `gorm:"type:text;not null" json:"title"`
	Authors           string  `gorm:"type:text;not null" json:"authors"`
	Abstract          string  `gorm:"type:text;not null" json:"abstract"`
	Declaration       bool    `gorm:"type:boolean;not null" json:"declaration"`
	ReferenceCode     string  `gorm:"type:text;not null;uniqueIndex" json:"referenceCode"`

	ReceiptFileID  string `gorm:"type:text;not null" json:"receiptFileId"`
	ReceiptFile    File   `gorm:"foreignKey:ReceiptFileID" json:"receiptFile"`
	AbstractFileID string `gorm:"type:text;not null" json:"abstractFileId"`
	AbstractFile   File   `gorm:"foreignKey:AbstractFileID" json:"abstractFile"`
}

func (r Registration) TableName() string {
	return "registrations"
}
