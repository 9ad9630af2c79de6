package constant

// File slot names expected in the multipart form.
const (
	FileFieldReceipt  = "receipt"
	FileFieldAbstract = "abstractFile"
)

// AllowedUploadExtensions is the extension allow-list for both file
// slots, matched case-insensitively against the text after the last dot.
var AllowedUploadExtensions = []string{"pdf", "doc", "docx", "png", "jpg", "jpeg"}

const (
	// Prefix of the human-facing reference code printed in the
	// confirmation mail, e.g. REG-V1StGXR8Z5.
	ReferenceCodePrefix = "REG-"
	ReferenceCodeLength = 10
)
