package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

// ParseQueryInt reads an optional bounded integer query parameter.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").WithDetails(map[string]any{
			key: strconv.Itoa(min) + ".." + strconv.Itoa(max),
		})
	}
	return value, nil
}

// ParseQueryEnum upper-cases an optional query parameter and hands it to parse.
// Empty input yields the zero value and ok=false.
func ParseQueryEnum[T any](r *http.Request, key string, parse func(string) (T, error)) (value T, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return value, false, nil
	}
	value, err = parse(strings.ToUpper(raw))
	if err != nil {
		return value, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query parameter").WithDetails(map[string]any{key: raw})
	}
	return value, true, nil
}
