package domain

const (
	TransferStatusPending    = "Pending"
	TransferStatusProcessing = "Processing"
	TransferStatusCompleted  = "Completed"
	TransferStatusCancelled  = "Cancelled"

	ContactTypePhone = "phone"
	ContactTypeBank  = "bank"

	// Reference prefixes and widths for human-readable codes.
	OrderRefPrefix        = "NTO"
	OrderRefRandomWidth   = 6
	OrderRefSequenceWidth = 5
	ClientCodePrefix      = "CL"
	ClientCodeWidth       = 4

	AuditEntityTransfer = "transfer"
	AuditEntityRate     = "exchange_rate"
	AuditEntityClient   = "client"
)

// TransferStatuses lists every status a transfer may hold. Staff may move a
// transfer between any two of them.
var TransferStatuses = []string{
	TransferStatusPending,
	TransferStatusProcessing,
	TransferStatusCompleted,
	TransferStatusCancelled,
}

// IsTransferStatus reports whether s is one of the known transfer statuses.
func IsTransferStatus(s string) bool {
	for _, status := range TransferStatuses {
		if status == s {
			return true
		}
	}
	return false
}
