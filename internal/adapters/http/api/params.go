package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/paceline/internal/app"
)

// paramError carries the code for a rejected query parameter.
type paramError struct {
	code string
	err  error
}

func (e *paramError) Error() string { return e.err.Error() }
func (e *paramError) Unwrap() error { return e.err }

func queryValue(r *http.Request, name string) (string, *paramError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", &paramError{
			code: service.CodeMissingParameter,
			err:  fmt.Errorf("%w: %s", ErrMissingParameter, name),
		}
	}
	return raw, nil
}

func queryInt(r *http.Request, name string) (int, *paramError) {
	raw, perr := queryValue(r, name)
	if perr != nil {
		return 0, perr
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{
			code: service.CodeInvalidParameter,
			err:  fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidParameter, name, raw),
		}
	}
	return v, nil
}

func queryFloat(r *http.Request, name string) (float64, *paramError) {
	raw, perr := queryValue(r, name)
	if perr != nil {
		return 0, perr
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &paramError{
			code: service.CodeInvalidParameter,
			err:  fmt.Errorf("%w: %s=%q is not a finite number", ErrInvalidParameter, name, raw),
		}
	}
	return v, nil
}
