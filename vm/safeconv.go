package vm

import (
	"fmt"
	"math"
)

// SafeInt64ToInt narrows a 96-bit value's signed projection to a
// platform int, for use as a stack/register/field/site index. Returns
// an error rather than silently wrapping when the magnitude would not
// round-trip (this only matters on 32-bit platforms; on 64-bit int it
// never triggers).
func SafeInt64ToInt(v int64) (int, error) {
	if int64(int(v)) != v {
		return 0, fmt.Errorf("value %d does not fit in a platform int", v)
	}
	return int(v), nil
}

// SafeUint64ToUint16 narrows a 96-bit value's unsigned projection to a
// type number or field-id-sized uint16.
func SafeUint64ToUint16(v uint64) (uint16, error) {
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("value 0x%X exceeds uint16 maximum", v)
	}
	return uint16(v), nil
}
