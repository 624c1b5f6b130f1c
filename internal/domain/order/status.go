// internal/domain/order/status.go
package order

// StatusAll is the filter value that matches every status
const StatusAll = "all"

// Statuses lists order statuses in lifecycle order
var Statuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending",
	OrderStatusConfirmed:  "Confirmed",
	OrderStatusProcessing: "Processing",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
}

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusConfirmed,
		OrderStatusCancelled,
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing,
		OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		OrderStatusShipped,
		OrderStatusCancelled,
	},
	OrderStatusShipped: {
		OrderStatusDelivered,
	},
}

// StatusOption is one entry of the status filter dropdown
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label of the status
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to OrderStatus) bool {
	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one
func NextStatuses(from OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), validTransitions[from]...)
}

// ParseStatusFilter turns a filter value into a status. Empty and "all" match every
// order and return ok with an empty status.
func ParseStatusFilter(value string) (OrderStatus, bool) {
	if value == "" || value == StatusAll {
		return "", true
	}
	status := OrderStatus(value)
	return status, status.IsValid()
}

// buildStatusOptions turns per-status counts into dropdown options, "all" first
func buildStatusOptions(counts map[OrderStatus]int64) []StatusOption {
	var total int64
	options := make([]StatusOption, 0, len(Statuses)+1)
	for _, status := range Statuses {
		total += counts[status]
		options = append(options, StatusOption{
			Value: string(status),
			Label: status.Label(),
			Count: counts[status],
		})
	}
	return append([]StatusOption{{Value: StatusAll, Label: "All Orders", Count: total}}, options...)
}
