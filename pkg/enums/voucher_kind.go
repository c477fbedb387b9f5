package enums

import "fmt"

// VoucherKind distinguishes flat-amount vouchers from percentage vouchers.
type VoucherKind string

const (
	VoucherKindFixed      VoucherKind = "fixed"
	VoucherKindPercentage VoucherKind = "percentage"
)

var validVoucherKinds = []VoucherKind{
	VoucherKindFixed,
	VoucherKindPercentage,
}

// String implements fmt.Stringer.
func (v VoucherKind) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VoucherKind.
func (v VoucherKind) IsValid() bool {
	for _, candidate := range validVoucherKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoucherKind converts raw input into a VoucherKind.
func ParseVoucherKind(value string) (VoucherKind, error) {
	for _, candidate := range validVoucherKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher kind %q", value)
}
