package execution

import (
	"fmt"
	"math"
	"strings"

	"github.com/xiaobogaga/logquery/common"
)

type funcBody func(params []common.Value) (common.Value, error)

// ScalarFunc is one builtin scalar function.
type ScalarFunc struct {
	Name      string
	ParamSize int
	Fn        funcBody
}

func getFunc(name string) *ScalarFunc {
	switch strings.ToUpper(name) {
	case "LOWER":
		return &ScalarFunc{Name: "LOWER", ParamSize: 1, Fn: lower}
	case "UPPER":
		return &ScalarFunc{Name: "UPPER", ParamSize: 1, Fn: upper}
	case "LENGTH":
		return &ScalarFunc{Name: "LENGTH", ParamSize: 1, Fn: length}
	case "TRIM":
		return &ScalarFunc{Name: "TRIM", ParamSize: 1, Fn: trim}
	case "ABS":
		return &ScalarFunc{Name: "ABS", ParamSize: 1, Fn: abs}
	default:
		return nil
	}
}

func stringParam(name string, params []common.Value) (string, error) {
	if params[0].TP != common.String {
		return "", fmt.Errorf("%w: %s expects a string, got %s", common.ErrTypeMismatch, name, params[0].TP)
	}
	return params[0].StrVal, nil
}

func lower(params []common.Value) (common.Value, error) {
	s, err := stringParam("LOWER", params)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewStringValue(strings.ToLower(s)), nil
}

func upper(params []common.Value) (common.Value, error) {
	s, err := stringParam("UPPER", params)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewStringValue(strings.ToUpper(s)), nil
}

func length(params []common.Value) (common.Value, error) {
	s, err := stringParam("LENGTH", params)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewIntValue(int64(len(s))), nil
}

func trim(params []common.Value) (common.Value, error) {
	s, err := stringParam("TRIM", params)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewStringValue(strings.TrimSpace(s)), nil
}

func abs(params []common.Value) (common.Value, error) {
	switch params[0].TP {
	case common.Int:
		v := params[0].IntVal
		if v == math.MinInt64 {
			return common.Value{}, fmt.Errorf("%w: ABS(%d) overflows int64", common.ErrTypeMismatch, v)
		}
		if v < 0 {
			v = -v
		}
		return common.NewIntValue(v), nil
	case common.Float:
		v := params[0].FloatVal
		if v < 0 {
			v = -v
		}
		return common.NewFloatValue(v), nil
	default:
		return common.Value{}, fmt.Errorf("%w: ABS expects a numeric value, got %s", common.ErrTypeMismatch, params[0].TP)
	}
}
