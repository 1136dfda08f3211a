package enums

import "fmt"

// InventoryReason explains why a stock quantity changed.
type InventoryReason string

const (
	InventoryReasonOrderCanceled    InventoryReason = "order_canceled"
	InventoryReasonItemRejected     InventoryReason = "item_rejected"
	InventoryReasonManualAdjustment InventoryReason = "manual_adjustment"
	InventoryReasonCorrection       InventoryReason = "correction"
)

var validInventoryReasons = []InventoryReason{
	InventoryReasonOrderCanceled,
	InventoryReasonItemRejected,
	InventoryReasonManualAdjustment,
	InventoryReasonCorrection,
}

// String implements fmt.Stringer.
func (i InventoryReason) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InventoryReason.
func (i InventoryReason) IsValid() bool {
	for _, candidate := range validInventoryReasons {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInventoryReason converts raw input into an InventoryReason.
func ParseInventoryReason(value string) (InventoryReason, error) {
	for _, candidate := range validInventoryReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory reason %q", value)
}
