package audit

import (
	"encoding/json"
	"strconv"
)

// Rate is a metric value whose denominator may be empty. An undefined rate is
// a reportable state distinct from zero: a subgroup with no positive
// instances has no recall, it does not have recall 0. JSON renders undefined
// as null.
type Rate struct {
	Defined bool
	Value   float64
}

// DefinedRate wraps a computed value.
func DefinedRate(v float64) Rate {
	return Rate{Defined: true, Value: v}
}

// UndefinedRate marks a metric with no denominator.
func UndefinedRate() Rate {
	return Rate{}
}

// Ratio divides num by den, undefined when den is zero.
func Ratio(num, den int) Rate {
	if den == 0 {
		return UndefinedRate()
	}
	return DefinedRate(float64(num) / float64(den))
}

func (r Rate) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = UndefinedRate()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = DefinedRate(v)
	return nil
}
